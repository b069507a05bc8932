package blog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"devscore/internal/adapter/httpx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(server *httptest.Server, opts ...Option) *Analyzer {
	base := []Option{
		WithHTTPClient(httpx.New(httpx.WithRetry(0, time.Millisecond))),
		WithEndpoints(server.URL+"/api", server.URL+"/feed"),
	}
	return NewAnalyzer(append(base, opts...)...)
}

func devToArticles(n, reactionsEach int) []devToArticle {
	out := make([]devToArticle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, devToArticle{
			Title:                fmt.Sprintf("Post %d", i),
			URL:                  fmt.Sprintf("https://dev.to/alice/post-%d", i),
			PublicReactionsCount: reactionsEach,
			CommentsCount:        1,
		})
	}
	return out
}

func TestAnalyzer_DevTo(t *testing.T) {
	tests := []struct {
		name      string
		articles  []devToArticle
		apiKey    string
		expected  int
		reactions int
	}{
		// 3*8 + 30/5 = 30
		{"普通作者", devToArticles(3, 10), "", 30, 30},
		// 10*8 + 100/5 = 100
		{"封顶 100", devToArticles(10, 10), "key-123", 100, 100},
		// 1*8 + 7/5 = 9.4
		{"小数四舍五入", devToArticles(1, 7), "", 9, 7},
		{"没有文章", []devToArticle{}, "", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/articles", r.URL.Path)
				assert.Equal(t, "alice", r.URL.Query().Get("username"))
				assert.Equal(t, "1000", r.URL.Query().Get("per_page"))
				assert.Equal(t, tt.apiKey, r.Header.Get("api-key"))
				json.NewEncoder(w).Encode(tt.articles)
			}))
			defer server.Close()

			res := newTestAnalyzer(server, WithAPIKey(tt.apiKey)).Analyze(context.Background(), "https://dev.to/alice")

			assert.False(t, res.Error, res.ErrorMessage)
			assert.Equal(t, "Dev.to", res.Platform)
			assert.Equal(t, "alice", res.Username)
			assert.Equal(t, tt.expected, res.Score)
			assert.Equal(t, len(tt.articles), res.Metrics["articles"])
			assert.Equal(t, tt.reactions, res.Metrics["totalReactions"])
		})
	}
}

func TestAnalyzer_DevTo_UpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	res := newTestAnalyzer(server).Analyze(context.Background(), "https://dev.to/alice")

	assert.True(t, res.Error)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, "alice", res.Username)
	assert.Contains(t, res.ErrorMessage, "500")
}

func mediumFeed(items int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Stories by Alice</title>`)
	for i := 0; i < items; i++ {
		fmt.Fprintf(&b, `<item><title>Story %d</title><link>https://medium.com/@alice/story-%d</link><pubDate>Mon, 02 Jan 2026 15:04:05 GMT</pubDate></item>`, i, i)
	}
	b.WriteString(`</channel></rss>`)
	return b.String()
}

func TestAnalyzer_Medium(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		items    int
		expected int
	}{
		// 5*6 + 10
		{"@handle 链接", "https://medium.com/@alice", 5, 40},
		{"文章链接", "https://medium.com/@alice/some-story-123", 2, 22},
		{"子域链接", "https://alice.medium.com/", 0, 10},
		{"封顶 100", "medium.com/@alice", 20, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/feed/@alice", r.URL.Path)
				w.Header().Set("Content-Type", "application/rss+xml")
				w.Write([]byte(mediumFeed(tt.items)))
			}))
			defer server.Close()

			res := newTestAnalyzer(server).Analyze(context.Background(), tt.url)

			assert.False(t, res.Error, res.ErrorMessage)
			assert.Equal(t, "Medium", res.Platform)
			assert.Equal(t, "alice", res.Username)
			assert.Equal(t, tt.expected, res.Score)
			assert.Equal(t, tt.items, res.Metrics["articles"])
		})
	}
}

func TestAnalyzer_Medium_EscapesHandle(t *testing.T) {
	var path, query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(mediumFeed(1)))
	}))
	defer server.Close()

	// %3F 解码后是 "?"，不转义就会被当成查询串
	res := newTestAnalyzer(server).Analyze(context.Background(), "https://medium.com/@al%3Fice")

	assert.False(t, res.Error, res.ErrorMessage)
	assert.Equal(t, "al?ice", res.Username)
	assert.Equal(t, "/feed/@al?ice", path)
	assert.Empty(t, query)
}

func TestAnalyzer_Medium_RecentArticles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mediumFeed(8)))
	}))
	defer server.Close()

	res := newTestAnalyzer(server).Analyze(context.Background(), "https://medium.com/@alice")

	recent, ok := res.Metrics["recentArticles"].([]ArticleSample)
	require.True(t, ok)
	require.Len(t, recent, 5)
	assert.Equal(t, "Story 0", recent[0].Title)
	assert.Equal(t, "https://medium.com/@alice/story-0", recent[0].URL)
}

func TestAnalyzer_Medium_FeedFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	res := newTestAnalyzer(server).Analyze(context.Background(), "https://medium.com/@alice")

	// 拉取失败不算错误，给默认分
	assert.False(t, res.Error)
	assert.Equal(t, 40, res.Score)
	assert.Empty(t, res.Metrics)
	assert.NotEmpty(t, res.ErrorMessage)
}

func TestAnalyzer_UnknownBlog(t *testing.T) {
	res := NewAnalyzer().Analyze(context.Background(), "https://alice.example.com/blog")

	assert.True(t, res.Error)
	assert.Equal(t, "Blog", res.Platform)
	assert.Equal(t, 0, res.Score)
}

func TestMediumHandle(t *testing.T) {
	tests := []struct {
		url      string
		expected string
		ok       bool
	}{
		{"https://medium.com/@alice", "alice", true},
		{"https://medium.com/@alice/", "alice", true},
		{"https://medium.com/alice", "alice", true},
		{"https://bob.medium.com/a-story", "bob", true},
		{"https://www.medium.com/@carol", "carol", true},
		{"https://medium.com/", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			handle, ok := MediumHandle(tt.url)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, handle)
		})
	}
}

func TestScores(t *testing.T) {
	assert.Equal(t, 0, DevToScore(0, 0))
	assert.Equal(t, 100, DevToScore(50, 10_000))
	assert.Equal(t, 10, MediumScore(0))
	assert.Equal(t, 100, MediumScore(15))
}
