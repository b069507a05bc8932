package main

import (
	"time"

	"devscore/internal/adapter/blog"
	"devscore/internal/adapter/cache"
	"devscore/internal/adapter/coding"
	"devscore/internal/adapter/github"
	"devscore/internal/adapter/httpx"
	"devscore/internal/adapter/linkedin"
	"devscore/internal/config"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/port"
	"devscore/internal/service"
)

// newAnalyzerFactory 请求带了凭证就用请求的，否则用配置里的
// 所有分析器共用一个 httpx.Client；resultCache 为 nil 时不缓存
func newAnalyzerFactory(cfg config.Config, resultCache port.ResultCache, log logger.Logger) service.AnalyzerFactory {
	client := httpx.New(httpx.WithRetry(cfg.Analyzer.MaxRetries, 300*time.Millisecond))
	ttl := cfg.Redis.TTL

	return func(tokens service.Tokens) service.Analyzers {
		githubToken := firstNonEmpty(tokens.GitHub, cfg.Analyzer.GitHubToken)
		blogKey := firstNonEmpty(tokens.Blog, cfg.Analyzer.DevToAPIKey)

		return service.Analyzers{
			GitHub:   cache.Wrap(domain.KeyGitHub, github.NewAnalyzer(githubToken), resultCache, ttl, log),
			LinkedIn: linkedin.NewAnalyzer(),
			Blog: cache.Wrap(domain.KeyBlog,
				blog.NewAnalyzer(blog.WithAPIKey(blogKey), blog.WithHTTPClient(client)),
				resultCache, ttl, log),
			Coding: cache.Wrap(domain.KeyCoding,
				coding.NewAnalyzer(coding.WithHTTPClient(client)),
				resultCache, ttl, log),
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
