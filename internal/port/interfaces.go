package port

import (
	"context"
	"time"

	"devscore/internal/domain"

	"github.com/google/uuid"
)

// Analyzer (分析器): 从一个主页链接得到平台子分数
// 永远不返回 error，所有失败都落在 AnalyzerResult.Error 上
type Analyzer interface {
	Analyze(ctx context.Context, url string) *domain.AnalyzerResult
}

// AnalyzerFunc 让普通函数满足 Analyzer
type AnalyzerFunc func(ctx context.Context, url string) *domain.AnalyzerResult

func (f AnalyzerFunc) Analyze(ctx context.Context, url string) *domain.AnalyzerResult {
	return f(ctx, url)
}

// ReportRepository (报告仓库): 只插入、按所有者查询
type ReportRepository interface {
	SaveReport(ctx context.Context, report *domain.Report) error
	ListReports(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Report, error)
	GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*domain.Report, error)
}

// ProfileRepository (资料仓库): 每个用户一行，upsert 语义
type ProfileRepository interface {
	UpsertProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
}

// Summarizer (点评师): 调用 LLM 给报告写一段简评
type Summarizer interface {
	Summarize(ctx context.Context, report *domain.FullReport) (string, error)
}

// Notifier (信使): 新报告生成后推送
type Notifier interface {
	NotifyReport(ctx context.Context, report *domain.Report) error
}

// ResultCache 缓存单个平台的分析结果，降低第三方 API 限流风险
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.AnalyzerResult, bool)
	Set(ctx context.Context, key string, result *domain.AnalyzerResult, ttl time.Duration) error
}
