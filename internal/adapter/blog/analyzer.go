// 包 blog 按域名分派到具体的博客平台：Dev.to 走文章 API，Medium 走作者 RSS。
package blog

import (
	"context"
	"fmt"

	"devscore/internal/adapter/extractor"
	"devscore/internal/adapter/httpx"
	"devscore/internal/domain"
)

const (
	devToFragment  = "dev.to"
	mediumFragment = "medium.com"

	defaultDevToAPI   = "https://dev.to/api"
	defaultMediumFeed = "https://medium.com/feed"
)

// Analyzer 实现了 port.Analyzer 接口
type Analyzer struct {
	http       *httpx.Client
	apiKey     string
	devToAPI   string
	mediumFeed string
}

// Option 配置 Analyzer
type Option func(*Analyzer)

// WithAPIKey Dev.to 的 API key，可选
func WithAPIKey(key string) Option {
	return func(a *Analyzer) { a.apiKey = key }
}

// WithHTTPClient 共享的 HTTP 客户端
func WithHTTPClient(c *httpx.Client) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.http = c
		}
	}
}

// WithEndpoints 覆盖 Dev.to API 与 Medium feed 的根地址 (测试用)
func WithEndpoints(devToAPI, mediumFeed string) Option {
	return func(a *Analyzer) {
		if devToAPI != "" {
			a.devToAPI = devToAPI
		}
		if mediumFeed != "" {
			a.mediumFeed = mediumFeed
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		http:       httpx.New(),
		devToAPI:   defaultDevToAPI,
		mediumFeed: defaultMediumFeed,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze 根据 host 选择平台，不认识的博客直接返回错误结果
func (a *Analyzer) Analyze(ctx context.Context, url string) *domain.AnalyzerResult {
	switch {
	case extractor.HostContains(url, devToFragment):
		return a.analyzeDevTo(ctx, url)
	case extractor.HostContains(url, mediumFragment):
		return a.analyzeMedium(ctx, url)
	default:
		return domain.Failed(domain.PlatformBlog, "", fmt.Errorf("不支持的博客平台: %q", url))
	}
}
