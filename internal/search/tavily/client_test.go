package tavily

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mkoshelev/reddit-radar/internal/search"
)

func TestClient_RawSearch_Payload(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name        string
		req         search.Request
		wantPresent map[string]interface{}
		wantAbsent  []string
	}{
		{
			name: "defaults",
			req:  search.NewRequest("golang generics"),
			wantPresent: map[string]interface{}{
				"api_key":        "test-key",
				"query":          "golang generics",
				"search_depth":   "advanced",
				"include_images": false,
				"include_answer": false,
				"max_results":    float64(20),
				"days":           float64(30),
				"topic":          "news",
			},
			wantAbsent: []string{"include_domains", "exclude_domains"},
		},
		{
			name: "zero days drops recency keys",
			req: search.Request{
				Query:       "golang generics",
				SearchDepth: search.DepthBasic,
				MaxResults:  5,
			},
			wantPresent: map[string]interface{}{
				"search_depth": "basic",
				"max_results":  float64(5),
			},
			wantAbsent: []string{"days", "topic", "include_domains", "exclude_domains"},
		},
		{
			name: "domain lists pass through verbatim",
			req: search.Request{
				Query:          "q",
				IncludeDomains: []string{"reddit.com", "news.ycombinator.com"},
				ExcludeDomains: []string{"pinterest.com"},
			},
			wantPresent: map[string]interface{}{
				"include_domains": []interface{}{"reddit.com", "news.ycombinator.com"},
				"exclude_domains": []interface{}{"pinterest.com"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]interface{}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q, want application/json", ct)
				}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("decode body: %v", err)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"query":"q","results":[]}`))
			}))
			defer server.Close()

			client := New(Config{APIKey: "test-key", BaseURL: server.URL}, logger)

			if _, err := client.RawSearch(context.Background(), tt.req); err != nil {
				t.Fatalf("RawSearch() error = %v", err)
			}

			for key, want := range tt.wantPresent {
				got, ok := body[key]
				if !ok {
					t.Errorf("payload key %q missing", key)
					continue
				}
				if wantList, isList := want.([]interface{}); isList {
					gotList, _ := got.([]interface{})
					if len(gotList) != len(wantList) {
						t.Errorf("payload[%q] = %v, want %v", key, got, want)
						continue
					}
					for i := range wantList {
						if gotList[i] != wantList[i] {
							t.Errorf("payload[%q][%d] = %v, want %v", key, i, gotList[i], wantList[i])
						}
					}
					continue
				}
				if got != want {
					t.Errorf("payload[%q] = %v, want %v", key, got, want)
				}
			}

			for _, key := range tt.wantAbsent {
				if _, ok := body[key]; ok {
					t.Errorf("payload key %q present, want omitted", key)
				}
			}
		})
	}
}

func TestClient_RawSearch_SingleAttempt(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	_, err := client.RawSearch(context.Background(), search.Request{Query: "q"})
	if !errors.Is(err, search.ErrSearchFailed) {
		t.Errorf("RawSearch() error = %v, want ErrSearchFailed", err)
	}
	if calls != 1 {
		t.Errorf("server calls = %d, want exactly 1 (no retry)", calls)
	}
}

func TestClient_RawSearch_ErrorBodyIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "bad", BaseURL: server.URL}, zap.NewNop())

	raw, err := client.RawSearch(context.Background(), search.Request{Query: "q"})
	if err != nil {
		t.Fatalf("RawSearch() error = %v, want nil (API error is data, not transport failure)", err)
	}
	if len(raw.Error) == 0 {
		t.Error("RawSearch() lost the error field")
	}
}

func TestClient_RawSearchReddit(t *testing.T) {
	var body map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":"q","results":[]}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	if _, err := client.RawSearchReddit(context.Background(), "rust async", 30, 0); err != nil {
		t.Fatalf("RawSearchReddit() error = %v", err)
	}

	if got := body["query"]; got != "rust async site:reddit.com" {
		t.Errorf("query = %v, want site-restricted query", got)
	}
	domains, _ := body["include_domains"].([]interface{})
	if len(domains) != 1 || domains[0] != "reddit.com" {
		t.Errorf("include_domains = %v, want [reddit.com]", body["include_domains"])
	}
	if got := body["max_results"]; got != float64(50) {
		t.Errorf("max_results = %v, want default 50", got)
	}
	if got := body["days"]; got != float64(30) {
		t.Errorf("days = %v, want 30", got)
	}
}

func TestClient_Search_Normalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query":"q","results":[{"title":" A ","url":"u","content":"c","published_date":"2024-01-02T03:04:05Z","score":0.9}]}`))
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL}, zap.NewNop())

	items, err := client.Search(context.Background(), search.Request{Query: "q"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Search() returned %d items, want 1", len(items))
	}
	if items[0].Title != "A" {
		t.Errorf("Title = %q, want trimmed %q", items[0].Title, "A")
	}
	if items[0].Date == nil || *items[0].Date != "2024-01-02" {
		t.Errorf("Date = %v, want 2024-01-02", items[0].Date)
	}
}

func TestClient_Search_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := New(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 100 * time.Millisecond,
	}, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if _, err := client.Search(ctx, search.Request{Query: "q"}); err == nil {
		t.Error("Search() expected timeout error")
	}
}
