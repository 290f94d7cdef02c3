package service

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mkoshelev/reddit-radar/internal/cache"
	"github.com/mkoshelev/reddit-radar/internal/metrics"
	"github.com/mkoshelev/reddit-radar/internal/repository"
	"github.com/mkoshelev/reddit-radar/internal/search"
)

// Radar - потребляющий слой над поисковым клиентом: кешированный
// веб-поиск и сканирование тем по реддиту.
type Radar interface {
	Search(ctx context.Context, req search.Request) ([]search.Item, error)
	ScanTopics(ctx context.Context, topics []string) (map[string][]search.RedditItem, error)
}

type RadarConfig struct {
	Days        int
	MaxResults  int
	CacheTTL    time.Duration
	ScanTimeout time.Duration
}

type RadarDeps struct {
	Search search.Client
	Cache  cache.Cache
	Logger *zap.Logger
	Config RadarConfig

	// опциональные компоненты
	Threads repository.ThreadRepository
	Metrics *metrics.Metrics
}

type radarService struct {
	search  search.Client
	cache   cache.Cache
	threads repository.ThreadRepository
	logger  *zap.Logger
	metrics *metrics.Metrics
	config  RadarConfig
}

func NewRadar(deps RadarDeps) Radar {
	if deps.Config.Days == 0 {
		deps.Config.Days = 30
	}
	if deps.Config.MaxResults == 0 {
		deps.Config.MaxResults = 50
	}
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = time.Hour
	}
	if deps.Config.ScanTimeout == 0 {
		deps.Config.ScanTimeout = 60 * time.Second
	}

	return &radarService{
		search:  deps.Search,
		cache:   deps.Cache,
		threads: deps.Threads,
		logger:  deps.Logger,
		metrics: deps.Metrics,
		config:  deps.Config,
	}
}

// Search - веб-поиск с кешированием по нормализованному запросу.
func (s *radarService) Search(ctx context.Context, req search.Request) ([]search.Item, error) {
	key := s.cacheKey("web", req)

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if items, ok := cached.([]search.Item); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return items, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	start := time.Now()
	items, err := s.search.Search(ctx, req)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearch("web", "error", time.Since(start))
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordSearch("web", "success", time.Since(start))
	}

	if s.cache != nil {
		s.cache.Set(key, items, s.config.CacheTTL)
	}

	return items, nil
}

// ScanTopics проходит по темам параллельно и собирает найденные треды.
// Ошибка по отдельной теме не валит скан - тема просто остается пустой.
func (s *radarService) ScanTopics(ctx context.Context, topics []string) (map[string][]search.RedditItem, error) {
	if s.metrics != nil {
		s.metrics.IncScansInFlight()
		defer s.metrics.DecScansInFlight()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.ScanTimeout)
	defer cancel()

	found := make(map[string][]search.RedditItem, len(topics))
	var mu sync.Mutex

	// gctx гаснет вместе с g.Wait(), таймаут скана проверяем по внешнему ctx
	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range topics {
		g.Go(func() error {
			items, err := s.scanTopic(gctx, topic)
			if err != nil {
				s.logger.Warn("topic scan failed",
					zap.Error(err),
					zap.String("topic", topic),
				)
				return nil
			}
			mu.Lock()
			found[topic] = items
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	if ctx.Err() != nil && len(found) == 0 {
		return nil, ctx.Err()
	}

	// историю пишем в фоне, скан результата не ждет
	if s.threads != nil {
		for topic, items := range found {
			if len(items) == 0 {
				continue
			}
			go func() {
				if err := s.threads.SaveThreads(context.Background(), topic, items); err != nil {
					s.logger.Warn("failed to save threads",
						zap.Error(err),
						zap.String("topic", topic),
					)
				}
			}()
		}
	}

	return found, nil
}

func (s *radarService) scanTopic(ctx context.Context, topic string) ([]search.RedditItem, error) {
	key := s.cacheKey("reddit", search.Request{
		Query:      topic,
		MaxResults: s.config.MaxResults,
		Days:       s.config.Days,
	})

	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			if items, ok := cached.([]search.RedditItem); ok {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return items, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	start := time.Now()
	items, err := s.search.SearchReddit(ctx, topic, s.config.Days, s.config.MaxResults)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordSearch("reddit", "error", time.Since(start))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordSearch("reddit", "success", time.Since(start))
		s.metrics.RecordRedditThreads(len(items))
	}

	items = dedupeByURL(items)

	if s.cache != nil {
		s.cache.Set(key, items, s.config.CacheTTL)
	}

	return items, nil
}

// dedupeByURL убирает повторы, сохраняя порядок первой встречи.
func dedupeByURL(items []search.RedditItem) []search.RedditItem {
	seen := make(map[string]bool, len(items))
	out := make([]search.RedditItem, 0, len(items))
	for _, it := range items {
		if seen[it.URL] {
			continue
		}
		seen[it.URL] = true
		out = append(out, it)
	}
	return out
}

// cacheKey учитывает все параметры запроса, влияющие на выдачу:
// запросы с разной глубиной или лимитом не делят запись в кеше.
func (s *radarService) cacheKey(kind string, req search.Request) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(strings.TrimSpace(req.Query))), " ")

	include := append([]string(nil), req.IncludeDomains...)
	sort.Strings(include)
	exclude := append([]string(nil), req.ExcludeDomains...)
	sort.Strings(exclude)

	data := strings.Join([]string{
		normalized,
		strings.Join(include, ","),
		strings.Join(exclude, ","),
		req.SearchDepth,
		strconv.Itoa(req.MaxResults),
		strconv.Itoa(req.Days),
	}, "|")
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%s:%x", kind, hash[:8])
}
