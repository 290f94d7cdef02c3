package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Sink    ErrorSink // куда писать API-ошибки провайдера, nil = stderr
}

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	parser  *Parser
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		parser:  NewParser(cfg.Sink),
	}
}

// Parser отдает нормализатор клиента - для случаев когда сырой ответ
// разбирают отдельно от запроса.
func (c *Client) Parser() *Parser {
	return c.parser
}

// searchPayload - тело запроса к /search. include_domains,
// exclude_domains, days и topic - условные ключи: пустое значение
// означает отсутствие ключа, а не ключ с пустым значением.
type searchPayload struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	SearchDepth    string   `json:"search_depth"`
	IncludeImages  bool     `json:"include_images"`
	IncludeAnswer  bool     `json:"include_answer"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	ExcludeDomains []string `json:"exclude_domains,omitempty"`
	Days           int      `json:"days,omitempty"`
	Topic          string   `json:"topic,omitempty"`
}

// RawResponse - ответ провайдера как есть. Error и Results держим как
// json.RawMessage: нормализатору важно отличать отсутствующий ключ от
// null и переживать записи произвольной формы.
type RawResponse struct {
	Query        string            `json:"query"`
	ResponseTime float64           `json:"response_time"`
	Error        json.RawMessage   `json:"error,omitempty"`
	Results      []json.RawMessage `json:"results"`
}

// RawSearch делает ровно один POST к /search и возвращает распарсенный
// ответ без изменений. Ретраев нет, транспортные ошибки уходят
// вызывающему как есть; API-ошибки (ключ error в теле 200-ответа)
// обрабатывает нормализатор.
func (c *Client) RawSearch(ctx context.Context, req search.Request) (*RawResponse, error) {
	if req.SearchDepth == "" {
		req.SearchDepth = search.DepthAdvanced
	}
	if req.MaxResults == 0 {
		req.MaxResults = 20
	}

	payload := searchPayload{
		APIKey:         c.apiKey,
		Query:          req.Query,
		SearchDepth:    req.SearchDepth,
		IncludeImages:  false,
		IncludeAnswer:  false,
		MaxResults:     req.MaxResults,
		IncludeDomains: req.IncludeDomains,
		ExcludeDomains: req.ExcludeDomains,
	}
	if req.Days > 0 {
		payload.Days = req.Days
		payload.Topic = "news" // провайдер требует topic для фильтра по свежести
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug("tavily search",
			zap.String("query", req.Query),
			zap.Int("max_results", req.MaxResults),
			zap.Int("days", req.Days),
		)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn("tavily non-ok status", zap.Int("status", resp.StatusCode))
		}
		return nil, fmt.Errorf("%w: status %d", search.ErrSearchFailed, resp.StatusCode)
	}

	var raw RawResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &raw, nil
}

// RawSearchReddit сужает поиск до тредов реддита: site: в самом
// запросе плюс include_domains для подстраховки.
func (c *Client) RawSearchReddit(ctx context.Context, topic string, days, maxResults int) (*RawResponse, error) {
	if maxResults == 0 {
		maxResults = 50
	}

	return c.RawSearch(ctx, search.Request{
		Query:          topic + " site:reddit.com",
		SearchDepth:    search.DepthAdvanced,
		IncludeDomains: []string{"reddit.com"},
		MaxResults:     maxResults,
		Days:           days,
	})
}

// Search - RawSearch + нормализация, реализует search.Client.
func (c *Client) Search(ctx context.Context, req search.Request) ([]search.Item, error) {
	raw, err := c.RawSearch(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseResponse(raw), nil
}

func (c *Client) SearchReddit(ctx context.Context, topic string, days, maxResults int) ([]search.RedditItem, error) {
	raw, err := c.RawSearchReddit(ctx, topic, days, maxResults)
	if err != nil {
		return nil, err
	}
	return c.parser.ParseRedditItems(raw), nil
}
