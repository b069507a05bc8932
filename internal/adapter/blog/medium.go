package blog

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"devscore/internal/adapter/extractor"
	"devscore/internal/domain"

	"github.com/mmcdole/gofeed"
)

const (
	// 拉取 feed 失败时的默认分数，不算错误
	mediumFallbackScore = 40
	feedItemMarker      = "<item>"
)

func (a *Analyzer) analyzeMedium(ctx context.Context, rawURL string) *domain.AnalyzerResult {
	username, ok := MediumHandle(rawURL)
	if !ok {
		return domain.Failed(domain.PlatformMedium, "", fmt.Errorf("无法从 %q 解析 Medium 用户名", rawURL))
	}

	feedURL := fmt.Sprintf("%s/@%s", a.mediumFeed, url.PathEscape(username))
	body, err := a.http.Get(ctx, feedURL, map[string]string{"Accept": "application/rss+xml, application/xml, text/xml"})
	if err != nil {
		return &domain.AnalyzerResult{
			Platform:     domain.PlatformMedium,
			Username:     username,
			Score:        mediumFallbackScore,
			Metrics:      map[string]any{},
			ErrorMessage: err.Error(),
		}
	}

	// 文章数以原始文本中的 <item> 标记为准，gofeed 只用来取展示用的标题
	articles := strings.Count(string(body), feedItemMarker)
	metrics := map[string]any{
		"articles": articles,
		"feedUrl":  feedURL,
	}
	if feed, err := gofeed.NewParser().Parse(bytes.NewReader(body)); err == nil {
		recent := make([]ArticleSample, 0, recentArticles)
		for _, it := range feed.Items {
			if len(recent) >= recentArticles {
				break
			}
			sample := ArticleSample{Title: strings.TrimSpace(it.Title), URL: strings.TrimSpace(it.Link)}
			if it.PublishedParsed != nil {
				sample.PublishedAt = it.PublishedParsed.UTC().Format("2006-01-02")
			}
			recent = append(recent, sample)
		}
		metrics["recentArticles"] = recent
	}

	return &domain.AnalyzerResult{
		Platform: domain.PlatformMedium,
		Username: username,
		Score:    MediumScore(articles),
		Metrics:  metrics,
	}
}

// MediumScore round(min(100, articles*6 + 10))
func MediumScore(articles int) int {
	raw := float64(articles)*6 + 10
	if raw > 100 {
		raw = 100
	}
	return domain.Round(raw)
}

// MediumHandle 优先取 @handle 段，其次 <handle>.medium.com 子域，最后取第一段
func MediumHandle(rawURL string) (string, bool) {
	segs := extractor.PathSegments(rawURL)
	for _, s := range segs {
		if strings.HasPrefix(s, "@") && len(s) > 1 {
			return strings.TrimPrefix(s, "@"), true
		}
	}
	if sub := mediumSubdomain(rawURL); sub != "" {
		return sub, true
	}
	first, ok := extractor.ExtractHandle(rawURL, mediumFragment)
	if !ok {
		return "", false
	}
	return strings.TrimPrefix(first, "@"), true
}

func mediumSubdomain(rawURL string) string {
	raw := strings.ToLower(strings.TrimSpace(rawURL))
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		raw = raw[:i]
	}
	sub, found := strings.CutSuffix(raw, "."+mediumFragment)
	if !found || sub == "" || sub == "www" {
		return ""
	}
	return sub
}
