// 包 linkedin 是占位分析器：LinkedIn 没有免 OAuth 的公开读取接口，
// 这里只解析用户名并返回固定分数，结果带 Stub 标记，不能当作真实测量。
package linkedin

import (
	"context"
	"fmt"

	"devscore/internal/adapter/extractor"
	"devscore/internal/domain"
)

const (
	domainFragment = "linkedin.com"

	// PlaceholderScore 占位分数
	PlaceholderScore = 50
)

// Analyzer 实现了 port.Analyzer 接口，不访问网络
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze 返回固定的占位结果
// TODO: 接入 LinkedIn OAuth 后替换为真实数据
func (a *Analyzer) Analyze(_ context.Context, url string) *domain.AnalyzerResult {
	username, ok := Handle(url)
	if !ok {
		return domain.Failed(domain.PlatformLinkedIn, "", fmt.Errorf("无法从 %q 解析 LinkedIn 用户名", url))
	}

	return &domain.AnalyzerResult{
		Platform: domain.PlatformLinkedIn,
		Username: username,
		Score:    PlaceholderScore,
		Stub:     true,
		Metrics: map[string]any{
			"connections":   "500+",
			"endorsements":  0,
			"experience":    "unavailable",
			"note":          "LinkedIn 数据需要 OAuth 授权，当前为占位值",
			"placeholder":   true,
			"profileLinked": true,
		},
	}
}

// Handle 取 /in/<handle> 或 /pub/<handle> 中的用户名，其余情况取第一段
func Handle(url string) (string, bool) {
	first, ok := extractor.ExtractHandle(url, domainFragment)
	if !ok {
		return "", false
	}
	if first != "in" && first != "pub" {
		return first, true
	}
	segs := extractor.PathSegments(url)
	for i, s := range segs {
		if s == first && i+1 < len(segs) {
			return segs[i+1], true
		}
	}
	return "", false
}
