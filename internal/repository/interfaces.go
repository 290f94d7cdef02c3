package repository

import (
	"context"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

// ThreadRepository - история найденных тредов по темам.
type ThreadRepository interface {
	SaveThreads(ctx context.Context, topic string, items []search.RedditItem) error
	RecentByTopic(ctx context.Context, topic string, limit int) ([]search.RedditItem, error)
	CountByTopic(ctx context.Context, topic string) (int, error)
}
