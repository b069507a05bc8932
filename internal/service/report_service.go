package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devscore/internal/common"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultAnalyzerTimeout = 8 * time.Second
	defaultSummaryTimeout  = 20 * time.Second
)

// Analyzers 四个平台各一个分析器，为 nil 的平台按失败处理
type Analyzers struct {
	GitHub   port.Analyzer
	LinkedIn port.Analyzer
	Blog     port.Analyzer
	Coding   port.Analyzer
}

// Tokens 单次请求携带的凭证，优先于配置里的默认值
type Tokens struct {
	GitHub string
	Blog   string
}

func (t Tokens) IsZero() bool {
	return t.GitHub == "" && t.Blog == ""
}

// AnalyzerFactory 用请求级凭证构造一组分析器
type AnalyzerFactory func(Tokens) Analyzers

// ReportService 负责生成、保存、查询报告
type ReportService struct {
	defaults   Analyzers
	factory    AnalyzerFactory
	reports    port.ReportRepository
	profiles   port.ProfileRepository
	summarizer port.Summarizer
	notifier   port.Notifier
	timeout    time.Duration
	log        logger.Logger
	now        func() time.Time
}

// Option 配置 ReportService
type Option func(*ReportService)

func WithFactory(f AnalyzerFactory) Option {
	return func(s *ReportService) { s.factory = f }
}

// WithSummarizer 可选，生成报告后写 AI 点评
func WithSummarizer(sum port.Summarizer) Option {
	return func(s *ReportService) { s.summarizer = sum }
}

// WithNotifier 可选，保存报告后推送
func WithNotifier(n port.Notifier) Option {
	return func(s *ReportService) { s.notifier = n }
}

// WithAnalyzerTimeout 单个分析器的超时
func WithAnalyzerTimeout(d time.Duration) Option {
	return func(s *ReportService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(s *ReportService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock 测试中注入当前时间
func WithClock(now func() time.Time) Option {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

func NewReportService(analyzers Analyzers, reports port.ReportRepository, profiles port.ProfileRepository, opts ...Option) *ReportService {
	s := &ReportService{
		defaults: analyzers,
		reports:  reports,
		profiles: profiles,
		timeout:  DefaultAnalyzerTimeout,
		log:      logger.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type analyzerJob struct {
	key      string
	platform string
	url      string
	analyzer port.Analyzer
}

// GenerateFullReport 并发调用各平台分析器并汇总，不落库
//
// 空白链接直接跳过，对应 AnalysisData 为 nil、子分数为 0。
// 子分数只在分析器成功时取其分数；总分是所有计入平台的平均值。
func (s *ReportService) GenerateFullReport(ctx context.Context, links domain.ProfileLinks, tokens Tokens) *domain.FullReport {
	links = links.Trimmed()
	set := s.analyzersFor(tokens)

	jobs := []analyzerJob{
		{domain.KeyGitHub, domain.PlatformGitHub, links.GithubURL, set.GitHub},
		{domain.KeyLinkedIn, domain.PlatformLinkedIn, links.LinkedinURL, set.LinkedIn},
		{domain.KeyBlog, domain.PlatformBlog, links.BlogURL, set.Blog},
		{domain.KeyCoding, domain.PlatformCoding, links.CodingPlatformURL, set.Coding},
	}

	// 每个 goroutine 只写自己的槽位
	results := make([]*domain.AnalyzerResult, len(jobs))
	var wg sync.WaitGroup
	for i, job := range jobs {
		if job.url == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.runAnalyzer(ctx, job)
		}()
	}
	wg.Wait()

	data := make(map[string]*domain.AnalyzerResult, len(jobs))
	for i, job := range jobs {
		data[job.key] = results[i]
	}
	return Aggregate(data)
}

// Aggregate 由四个平台结果算出子分数与总分
func Aggregate(data map[string]*domain.AnalyzerResult) *domain.FullReport {
	report := &domain.FullReport{
		AnalysisData: map[string]*domain.AnalyzerResult{
			domain.KeyGitHub:   data[domain.KeyGitHub],
			domain.KeyLinkedIn: data[domain.KeyLinkedIn],
			domain.KeyBlog:     data[domain.KeyBlog],
			domain.KeyCoding:   data[domain.KeyCoding],
		},
	}
	report.GithubScore = subScore(data[domain.KeyGitHub])
	report.LinkedinScore = subScore(data[domain.KeyLinkedIn])
	report.BlogScore = subScore(data[domain.KeyBlog])
	report.CodingScore = subScore(data[domain.KeyCoding])
	report.TotalScore = TotalScore(
		data[domain.KeyGitHub], data[domain.KeyLinkedIn], data[domain.KeyBlog], data[domain.KeyCoding],
	)
	return report
}

// TotalScore 对计入的结果取平均并四舍五入
// 未提供 (nil) 和失败的结果走同一条路径被排除；测量出的 0 分照常计入
func TotalScore(results ...*domain.AnalyzerResult) int {
	sum, count := 0, 0
	for _, r := range results {
		if !r.Counted() {
			continue
		}
		sum += subScore(r)
		count++
	}
	if count == 0 {
		return 0
	}
	return domain.Round(float64(sum) / float64(count))
}

func subScore(r *domain.AnalyzerResult) int {
	if !r.Counted() {
		return 0
	}
	return min(100, max(0, r.Score))
}

func (s *ReportService) analyzersFor(tokens Tokens) Analyzers {
	if tokens.IsZero() || s.factory == nil {
		return s.defaults
	}
	return s.factory(tokens)
}

func (s *ReportService) runAnalyzer(ctx context.Context, job analyzerJob) (res *domain.AnalyzerResult) {
	if job.analyzer == nil {
		return domain.Failed(job.platform, "", fmt.Errorf("%s 分析器未配置", job.key))
	}

	actx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("分析器 panic", fmt.Errorf("%v", r), zap.String("platform", job.key), zap.String("url", job.url))
			res = domain.Failed(job.platform, "", fmt.Errorf("analyzer panic: %v", r))
		}
	}()

	start := time.Now()
	res = job.analyzer.Analyze(actx, job.url)
	if res == nil {
		res = domain.Failed(job.platform, "", fmt.Errorf("%s 分析器没有返回结果", job.key))
	}
	if res.Error {
		s.log.Warn("平台分析失败",
			zap.String("platform", job.key),
			zap.String("url", job.url),
			zap.String("cause", res.ErrorMessage),
			zap.Duration("elapsed", time.Since(start)))
	} else {
		s.log.Debug("平台分析完成",
			zap.String("platform", job.key),
			zap.Int("score", res.Score),
			zap.Duration("elapsed", time.Since(start)))
	}
	return res
}

// GenerateAndSave 生成报告并保存，同时把链接写回用户资料
//
// links 为空时使用已保存的资料；两者都没有返回 INVALID_INPUT。
// AI 点评与推送失败只记日志。
func (s *ReportService) GenerateAndSave(ctx context.Context, ownerID uuid.UUID, links domain.ProfileLinks, tokens Tokens) (*domain.Report, error) {
	return s.generateAndSave(ctx, ownerID, links, tokens, true)
}

func (s *ReportService) generateAndSave(ctx context.Context, ownerID uuid.UUID, links domain.ProfileLinks, tokens Tokens, saveProfile bool) (*domain.Report, error) {
	if links.IsEmpty() {
		profile, err := s.profiles.GetProfile(ctx, ownerID)
		switch {
		case common.IsCode(err, common.ErrCodeNotFound):
			return nil, common.NewError(common.ErrCodeInvalidInput, "没有可分析的链接，请先填写资料")
		case err != nil:
			return nil, err
		}
		links = profile.Links()
		saveProfile = false
		if links.IsEmpty() {
			return nil, common.NewError(common.ErrCodeInvalidInput, "资料中没有任何链接")
		}
	}

	full := s.GenerateFullReport(ctx, links, tokens)
	report := domain.NewReport(ownerID, full, s.now())

	if s.summarizer != nil {
		sctx, cancel := context.WithTimeout(ctx, defaultSummaryTimeout)
		summary, err := s.summarizer.Summarize(sctx, full)
		cancel()
		if err != nil {
			s.log.Warn("AI 点评失败，报告不带点评", zap.Error(err))
		} else {
			report.Summary = summary
		}
	}

	if err := s.reports.SaveReport(ctx, report); err != nil {
		return nil, err
	}
	s.log.Info("报告已保存",
		zap.String("owner", ownerID.String()),
		zap.String("report", report.ID.String()),
		zap.Int("total", report.TotalScore))

	if saveProfile {
		if _, err := s.SaveProfile(ctx, ownerID, links); err != nil {
			s.log.Warn("更新资料失败", zap.String("owner", ownerID.String()), zap.Error(err))
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyReport(ctx, report); err != nil {
			s.log.Warn("推送报告失败", zap.String("report", report.ID.String()), zap.Error(err))
		}
	}
	return report, nil
}

func (s *ReportService) ListReports(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Report, error) {
	return s.reports.ListReports(ctx, ownerID, limit)
}

func (s *ReportService) GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*domain.Report, error) {
	return s.reports.GetReport(ctx, ownerID, reportID)
}

func (s *ReportService) GetProfile(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error) {
	return s.profiles.GetProfile(ctx, ownerID)
}

// SaveProfile 去掉首尾空白后 upsert
func (s *ReportService) SaveProfile(ctx context.Context, ownerID uuid.UUID, links domain.ProfileLinks) (*domain.Profile, error) {
	profile := domain.NewProfile(ownerID, links)
	profile.UpdatedAt = s.now()
	if err := s.profiles.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}
