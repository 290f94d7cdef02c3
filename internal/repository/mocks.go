package repository

import (
	"context"
	"sync"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

// MockThreadRepo - in-memory реализация ThreadRepository для тестов.
type MockThreadRepo struct {
	mu      sync.Mutex
	threads map[string][]search.RedditItem // key: topic

	SaveErr   error
	SaveCalls int
}

func NewMockThreadRepo() *MockThreadRepo {
	return &MockThreadRepo{threads: make(map[string][]search.RedditItem)}
}

func (m *MockThreadRepo) SaveThreads(ctx context.Context, topic string, items []search.RedditItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}

	for _, it := range items {
		replaced := false
		for i, existing := range m.threads[topic] {
			if existing.URL == it.URL {
				m.threads[topic][i] = it
				replaced = true
				break
			}
		}
		if !replaced {
			m.threads[topic] = append(m.threads[topic], it)
		}
	}
	return nil
}

func (m *MockThreadRepo) RecentByTopic(ctx context.Context, topic string, limit int) ([]search.RedditItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.threads[topic]
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}

	out := make([]search.RedditItem, len(items))
	copy(out, items)
	return out, nil
}

func (m *MockThreadRepo) CountByTopic(ctx context.Context, topic string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.threads[topic]), nil
}
