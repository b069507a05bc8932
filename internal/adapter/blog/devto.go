package blog

import (
	"context"
	"fmt"
	"net/url"

	"devscore/internal/adapter/extractor"
	"devscore/internal/domain"
)

const recentArticles = 5

type devToArticle struct {
	Title                string `json:"title"`
	URL                  string `json:"url"`
	PublicReactionsCount int    `json:"public_reactions_count"`
	CommentsCount        int    `json:"comments_count"`
	PublishedAt          string `json:"published_at"`
}

// ArticleSample 用于展示的文章摘要
type ArticleSample struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Reactions   int    `json:"reactions,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
}

func (a *Analyzer) analyzeDevTo(ctx context.Context, rawURL string) *domain.AnalyzerResult {
	username, ok := extractor.ExtractHandle(rawURL, devToFragment)
	if !ok {
		return domain.Failed(domain.PlatformDevTo, "", fmt.Errorf("无法从 %q 解析 Dev.to 用户名", rawURL))
	}

	headers := map[string]string{}
	if a.apiKey != "" {
		headers["api-key"] = a.apiKey
	}
	endpoint := fmt.Sprintf("%s/articles?username=%s&per_page=1000", a.devToAPI, url.QueryEscape(username))

	var articles []devToArticle
	if err := a.http.GetJSON(ctx, endpoint, headers, &articles); err != nil {
		return domain.Failed(domain.PlatformDevTo, username, err)
	}

	totalReactions, totalComments := 0, 0
	recent := make([]ArticleSample, 0, recentArticles)
	for _, art := range articles {
		totalReactions += art.PublicReactionsCount
		totalComments += art.CommentsCount
		if len(recent) < recentArticles {
			recent = append(recent, ArticleSample{
				Title:       art.Title,
				URL:         art.URL,
				Reactions:   art.PublicReactionsCount,
				PublishedAt: art.PublishedAt,
			})
		}
	}

	return &domain.AnalyzerResult{
		Platform: domain.PlatformDevTo,
		Username: username,
		Score:    DevToScore(len(articles), totalReactions),
		Metrics: map[string]any{
			"articles":       len(articles),
			"totalReactions": totalReactions,
			"totalComments":  totalComments,
			"recentArticles": recent,
		},
	}
}

// DevToScore round(min(100, articles*8 + reactions/5))
func DevToScore(articles, totalReactions int) int {
	raw := float64(articles)*8 + float64(totalReactions)/5
	if raw > 100 {
		raw = 100
	}
	return domain.Round(raw)
}
