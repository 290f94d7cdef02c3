package tavily

import (
	"fmt"
	"strings"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

// дефолтная релевантность когда провайдер не вернул score (или вернул 0)
const defaultRelevance = 0.8

// ParseRedditItems прогоняет ответ через нормализацию и оставляет
// только ссылки на конкретные треды (эвристика по подстрокам
// "reddit.com/r/" и "/comments/", не строгий разбор URL - ссылка с
// такими подстроками в query string тоже пройдет, это осознанно).
//
// Нумерация ID идет по индексу записи в списке ДО фильтрации:
// отфильтрованная запись съедает номер, поэтому ID выживших могут быть
// неплотными (R1, R3). Так считал исходный пайплайн, downstream уже
// завязан на эти идентификаторы - не чинить.
func (p *Parser) ParseRedditItems(resp *RawResponse) []search.RedditItem {
	items := p.ParseResponse(resp)

	clean := []search.RedditItem{}
	for i, it := range items {
		if !strings.Contains(it.URL, "reddit.com/r/") || !strings.Contains(it.URL, "/comments/") {
			continue
		}

		subreddit := ""
		if _, after, ok := strings.Cut(it.URL, "/r/"); ok {
			subreddit, _, _ = strings.Cut(after, "/")
		}

		why := it.Content
		if r := []rune(why); len(r) > 200 {
			why = string(r[:200])
		}

		relevance := defaultRelevance
		if it.Score != nil && *it.Score != 0 {
			relevance = *it.Score
		}

		clean = append(clean, search.RedditItem{
			ID:          fmt.Sprintf("R%d", i+1),
			Title:       it.Title,
			URL:         it.URL,
			Subreddit:   subreddit,
			Date:        it.Date,
			WhyRelevant: why + "...", // многоточие добавляется всегда, даже к короткому тексту
			Relevance:   relevance,
		})
	}

	return clean
}
