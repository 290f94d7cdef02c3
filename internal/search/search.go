package search

import (
	"context"
	"errors"
)

var (
	ErrSearchFailed = errors.New("search request failed")
)

const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

// Request - параметры поискового запроса.
// Days == 0 означает "без ограничения по свежести".
type Request struct {
	Query          string
	SearchDepth    string
	IncludeDomains []string
	ExcludeDomains []string
	MaxResults     int
	Days           int
}

// NewRequest возвращает запрос с дефолтами как в исходном пайплайне:
// advanced-поиск, 20 результатов, окно в 30 дней.
func NewRequest(query string) Request {
	return Request{
		Query:       query,
		SearchDepth: DepthAdvanced,
		MaxResults:  20,
		Days:        30,
	}
}

// Item - нормализованный результат поиска, без провайдер-специфичных полей.
// Date и Score - указатели: nil означает что провайдер ключ не вернул
// (отличаем "ключа нет" от пустого значения).
type Item struct {
	Title   string
	URL     string
	Content string
	Snippet string // всегда дублирует Content
	Date    *string
	Score   *float64
}

// RedditItem - результат, прошедший фильтр "это конкретный тред".
type RedditItem struct {
	ID          string // R<n>, нумерация по индексу до фильтрации
	Title       string
	URL         string
	Subreddit   string
	Date        *string
	WhyRelevant string
	Relevance   float64
}

type Client interface {
	Search(ctx context.Context, req Request) ([]Item, error)
	SearchReddit(ctx context.Context, topic string, days, maxResults int) ([]RedditItem, error)
}
