package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 平台标签 (AnalyzerResult.Platform)
const (
	PlatformGitHub     = "GitHub"
	PlatformLinkedIn   = "LinkedIn"
	PlatformDevTo      = "Dev.to"
	PlatformMedium     = "Medium"
	PlatformLeetCode   = "LeetCode"
	PlatformCodeforces = "Codeforces"
	PlatformBlog       = "Blog"
	PlatformCoding     = "Coding"
)

// AnalysisData 的四个固定键
const (
	KeyGitHub   = "github"
	KeyLinkedIn = "linkedin"
	KeyBlog     = "blog"
	KeyCoding   = "coding"
)

// ProfileLinks 用户提交的四个主页链接，均可为空
type ProfileLinks struct {
	GithubURL         string `json:"githubUrl"`
	LinkedinURL       string `json:"linkedinUrl"`
	BlogURL           string `json:"blogUrl"`
	CodingPlatformURL string `json:"codingPlatformUrl"`
}

// Trimmed 返回去掉首尾空白后的副本
func (l ProfileLinks) Trimmed() ProfileLinks {
	return ProfileLinks{
		GithubURL:         strings.TrimSpace(l.GithubURL),
		LinkedinURL:       strings.TrimSpace(l.LinkedinURL),
		BlogURL:           strings.TrimSpace(l.BlogURL),
		CodingPlatformURL: strings.TrimSpace(l.CodingPlatformURL),
	}
}

// IsEmpty 四个链接是否全部为空白
func (l ProfileLinks) IsEmpty() bool {
	t := l.Trimmed()
	return t.GithubURL == "" && t.LinkedinURL == "" && t.BlogURL == "" && t.CodingPlatformURL == ""
}

// AnalyzerResult 单个平台分析器的输出
//
// Score == 0 且 Error == false 表示"测量过，结果就是 0"；
// Error == true 表示拿不到真实数据。
type AnalyzerResult struct {
	Platform string         `json:"platform"`
	Username string         `json:"username,omitempty"`
	Score    int            `json:"score"`
	Metrics  map[string]any `json:"metrics"`
	Error    bool           `json:"error"`

	// 失败原因，仅用于诊断
	ErrorMessage string `json:"errorMessage,omitempty"`

	// 占位数据 (例如 LinkedIn)，不是真实测量
	Stub bool `json:"stub,omitempty"`
}

// Failed 构造一个失败结果
func Failed(platform, username string, err error) *AnalyzerResult {
	res := &AnalyzerResult{
		Platform: platform,
		Username: username,
		Score:    0,
		Metrics:  map[string]any{},
		Error:    true,
	}
	if err != nil {
		res.ErrorMessage = err.Error()
	}
	return res
}

// Counted 该结果是否计入总分平均
func (r *AnalyzerResult) Counted() bool {
	return r != nil && !r.Error
}

// FullReport 聚合器的输出，尚未落库
type FullReport struct {
	GithubScore   int                        `json:"githubScore"`
	LinkedinScore int                        `json:"linkedinScore"`
	BlogScore     int                        `json:"blogScore"`
	CodingScore   int                        `json:"codingScore"`
	TotalScore    int                        `json:"totalScore"`
	AnalysisData  map[string]*AnalyzerResult `json:"analysisData"`
}

// Report 一次分析的持久化记录，创建后不再修改
type Report struct {
	ID            uuid.UUID                  `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID                  `json:"ownerId" gorm:"type:uuid;index;not null"`
	GithubScore   int                        `json:"githubScore"`
	LinkedinScore int                        `json:"linkedinScore"`
	BlogScore     int                        `json:"blogScore"`
	CodingScore   int                        `json:"codingScore"`
	TotalScore    int                        `json:"totalScore"`
	AnalysisData  map[string]*AnalyzerResult `json:"analysisData" gorm:"type:jsonb;serializer:json"`

	// AI 简评，可能为空
	Summary string `json:"summary,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime;<-:create"`
}

// NewReport 由聚合结果生成一条新报告
func NewReport(ownerID uuid.UUID, full *FullReport, now time.Time) *Report {
	return &Report{
		ID:            uuid.New(),
		OwnerID:       ownerID,
		GithubScore:   full.GithubScore,
		LinkedinScore: full.LinkedinScore,
		BlogScore:     full.BlogScore,
		CodingScore:   full.CodingScore,
		TotalScore:    full.TotalScore,
		AnalysisData:  full.AnalysisData,
		CreatedAt:     now,
	}
}

// Profile 每个用户一行，保存最近一次提交的链接
type Profile struct {
	OwnerID           uuid.UUID `json:"ownerId" gorm:"type:uuid;primaryKey"`
	GithubURL         string    `json:"githubUrl"`
	LinkedinURL       string    `json:"linkedinUrl"`
	BlogURL           string    `json:"blogUrl"`
	CodingPlatformURL string    `json:"codingPlatformUrl"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Links 取出 Profile 中的链接
func (p *Profile) Links() ProfileLinks {
	return ProfileLinks{
		GithubURL:         p.GithubURL,
		LinkedinURL:       p.LinkedinURL,
		BlogURL:           p.BlogURL,
		CodingPlatformURL: p.CodingPlatformURL,
	}
}

// NewProfile 用一组链接构造 Profile
func NewProfile(ownerID uuid.UUID, links ProfileLinks) *Profile {
	t := links.Trimmed()
	return &Profile{
		OwnerID:           ownerID,
		GithubURL:         t.GithubURL,
		LinkedinURL:       t.LinkedinURL,
		BlogURL:           t.BlogURL,
		CodingPlatformURL: t.CodingPlatformURL,
	}
}

// Ratio 返回 min(1, value/threshold)，负数按 0 处理
func Ratio(value, threshold float64) float64 {
	if threshold <= 0 || value <= 0 {
		return 0
	}
	return math.Min(1, value/threshold)
}

// Round 四舍五入到整数
func Round(v float64) int {
	return int(math.Round(v))
}
