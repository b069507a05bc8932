// 包 coding 按域名分派到算法竞赛平台：LeetCode 走 GraphQL，Codeforces 走 REST。
package coding

import (
	"context"
	"fmt"

	"devscore/internal/adapter/extractor"
	"devscore/internal/adapter/httpx"
	"devscore/internal/domain"
)

const (
	leetCodeFragment   = "leetcode.com"
	codeforcesFragment = "codeforces.com"

	defaultLeetCodeGraphQL = "https://leetcode.com/graphql"
	defaultCodeforcesAPI   = "https://codeforces.com/api"
)

// Analyzer 实现了 port.Analyzer 接口
type Analyzer struct {
	http            *httpx.Client
	leetCodeGraphQL string
	codeforcesAPI   string
}

// Option 配置 Analyzer
type Option func(*Analyzer)

// WithHTTPClient 共享的 HTTP 客户端
func WithHTTPClient(c *httpx.Client) Option {
	return func(a *Analyzer) {
		if c != nil {
			a.http = c
		}
	}
}

// WithEndpoints 覆盖 LeetCode GraphQL 与 Codeforces API 地址 (测试用)
func WithEndpoints(leetCodeGraphQL, codeforcesAPI string) Option {
	return func(a *Analyzer) {
		if leetCodeGraphQL != "" {
			a.leetCodeGraphQL = leetCodeGraphQL
		}
		if codeforcesAPI != "" {
			a.codeforcesAPI = codeforcesAPI
		}
	}
}

func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		http:            httpx.New(),
		leetCodeGraphQL: defaultLeetCodeGraphQL,
		codeforcesAPI:   defaultCodeforcesAPI,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze 根据 host 选择平台，不认识的平台直接返回错误结果
func (a *Analyzer) Analyze(ctx context.Context, url string) *domain.AnalyzerResult {
	switch {
	case extractor.HostContains(url, leetCodeFragment):
		return a.analyzeLeetCode(ctx, url)
	case extractor.HostContains(url, codeforcesFragment):
		return a.analyzeCodeforces(ctx, url)
	default:
		return domain.Failed(domain.PlatformCoding, "", fmt.Errorf("不支持的刷题平台: %q", url))
	}
}

// handleAfter 取 marker 段之后的用户名，例如 /u/<handle>、/profile/<handle>
func handleAfter(url, fragment, marker string) (string, bool) {
	segs := extractor.PathSegments(url)
	for i, s := range segs {
		if s == marker && i+1 < len(segs) {
			return segs[i+1], true
		}
	}
	first, ok := extractor.ExtractHandle(url, fragment)
	if !ok || first == marker {
		return "", false
	}
	return first, true
}
