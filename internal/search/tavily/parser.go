package tavily

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

// ErrorSink принимает сообщения об API-ошибках провайдера.
// Вынесен в интерфейс чтобы нормализацию можно было тестировать
// без реального stderr.
type ErrorSink interface {
	LogError(msg string)
}

// WriterSink пишет одну строку вида "[TAVILY ERROR] <msg>\n" и сразу
// сбрасывает буфер, если поток это умеет.
type WriterSink struct {
	w io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func NewStderrSink() *WriterSink {
	return &WriterSink{w: os.Stderr}
}

func (s *WriterSink) LogError(msg string) {
	fmt.Fprintf(s.w, "[TAVILY ERROR] %s\n", msg)
	if f, ok := s.w.(interface{ Sync() error }); ok {
		f.Sync()
	}
}

// Parser переводит сырой ответ провайдера в нормализованные записи.
// Чистая функция от входа, состояния между вызовами нет.
type Parser struct {
	sink ErrorSink
}

func NewParser(sink ErrorSink) *Parser {
	if sink == nil {
		sink = NewStderrSink()
	}
	return &Parser{sink: sink}
}

// ParseResponse разбирает список results в нормализованные записи.
// API-ошибка (ключ error) логируется и дает пустой результат, а не
// ошибку - деградируем до "ничего не нашли". Битые записи (не объект,
// поля не того типа) пропускаются или получают дефолты, порядок
// сохраняется.
func (p *Parser) ParseResponse(resp *RawResponse) []search.Item {
	items := []search.Item{}

	if resp == nil {
		return items
	}

	if len(resp.Error) > 0 {
		p.sink.LogError("API error: " + rawToText(resp.Error))
		return items
	}

	for _, raw := range resp.Results {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			// запись не объект - пропускаем, не фатально
			continue
		}
		if fields == nil {
			// json null разбирается без ошибки в nil-мапу
			continue
		}

		it := search.Item{
			Title:   strings.TrimSpace(coerceString(fields["title"])),
			URL:     asString(fields["url"]),
			Content: asString(fields["content"]),
		}
		it.Snippet = it.Content

		if v, ok := fields["published_date"]; ok {
			if s, ok := v.(string); ok {
				d := s
				// даты у провайдера обычно ISO-строки, приводим к YYYY-MM-DD;
				// не распарсилось - оставляем как отдал провайдер
				if formatted, ok := reformatISODate(s); ok {
					d = formatted
				}
				it.Date = &d
			}
		}

		if v, ok := fields["score"]; ok {
			if f, ok := v.(float64); ok {
				it.Score = &f
			}
		}

		items = append(items, it)
	}

	return items
}

// rawToText разворачивает значение ключа error в текст: JSON-строка
// отдается без кавычек, все остальное - как есть.
func rawToText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// coerceString - аналог приведения к строке: не-строки
// сериализуются в текст, отсутствующее значение дает "".
func coerceString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

var isoLayouts = []string{
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// reformatISODate пытается разобрать ISO-8601 дату и привести к
// YYYY-MM-DD. Хвостовой 'Z' переводим в явное смещение UTC до парсинга.
func reformatISODate(s string) (string, bool) {
	v := s
	if strings.HasSuffix(v, "Z") {
		v = strings.TrimSuffix(v, "Z") + "+00:00"
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}
