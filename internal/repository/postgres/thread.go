package postgres

import (
	"context"
	"fmt"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

type ThreadRepo struct {
	db *DB
}

func NewThreadRepo(db *DB) *ThreadRepo {
	return &ThreadRepo{db: db}
}

// SaveThreads апсертит найденные треды: повторная находка того же URL
// по той же теме обновляет релевантность и текст, а не плодит дубли.
func (r *ThreadRepo) SaveThreads(ctx context.Context, topic string, items []search.RedditItem) error {
	query := `
        INSERT INTO reddit_threads (topic, thread_id, title, url, subreddit, posted_at, why_relevant, relevance)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (topic, url) DO UPDATE
        SET thread_id = EXCLUDED.thread_id,
            title = EXCLUDED.title,
            posted_at = EXCLUDED.posted_at,
            why_relevant = EXCLUDED.why_relevant,
            relevance = EXCLUDED.relevance,
            found_at = NOW()
    `

	for _, it := range items {
		_, err := r.db.Pool.Exec(ctx, query,
			topic,
			it.ID,
			it.Title,
			it.URL,
			it.Subreddit,
			it.Date,
			it.WhyRelevant,
			it.Relevance,
		)
		if err != nil {
			return fmt.Errorf("save thread %s: %w", it.URL, err)
		}
	}

	return nil
}

func (r *ThreadRepo) RecentByTopic(ctx context.Context, topic string, limit int) ([]search.RedditItem, error) {
	query := `
        SELECT thread_id, title, url, subreddit, posted_at, why_relevant, relevance
        FROM reddit_threads
        WHERE topic = $1
        ORDER BY found_at DESC
        LIMIT $2
    `

	rows, err := r.db.Pool.Query(ctx, query, topic, limit)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	var items []search.RedditItem
	for rows.Next() {
		var it search.RedditItem
		err := rows.Scan(
			&it.ID,
			&it.Title,
			&it.URL,
			&it.Subreddit,
			&it.Date,
			&it.WhyRelevant,
			&it.Relevance,
		)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (r *ThreadRepo) CountByTopic(ctx context.Context, topic string) (int, error) {
	query := `SELECT COUNT(*) FROM reddit_threads WHERE topic = $1`

	var count int
	if err := r.db.Pool.QueryRow(ctx, query, topic).Scan(&count); err != nil {
		return 0, fmt.Errorf("count threads: %w", err)
	}

	return count, nil
}
