package mock

import (
	"context"
	"sync"
	"time"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

// Client - управляемая заглушка search.Client для тестов сервисного слоя.
type Client struct {
	Items       []search.Item
	RedditItems []search.RedditItem
	Error       error
	Delay       time.Duration

	CallCount   int
	LastRequest search.Request
	LastTopic   string
	AllTopics   []string

	mu sync.Mutex
}

func New() *Client {
	return &Client{}
}

func (c *Client) WithItems(items []search.Item) *Client {
	c.Items = items
	return c
}

func (c *Client) WithRedditItems(items []search.RedditItem) *Client {
	c.RedditItems = items
	return c
}

func (c *Client) WithError(err error) *Client {
	c.Error = err
	return c
}

func (c *Client) WithDelay(delay time.Duration) *Client {
	c.Delay = delay
	return c
}

func (c *Client) Search(ctx context.Context, req search.Request) ([]search.Item, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastRequest = req
	delay := c.Delay
	err := c.Error
	items := c.Items
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) SearchReddit(ctx context.Context, topic string, days, maxResults int) ([]search.RedditItem, error) {
	c.mu.Lock()
	c.CallCount++
	c.LastTopic = topic
	c.AllTopics = append(c.AllTopics, topic)
	delay := c.Delay
	err := c.Error
	items := c.RedditItems
	c.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCount = 0
	c.LastRequest = search.Request{}
	c.LastTopic = ""
	c.AllTopics = nil
}
