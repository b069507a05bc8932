package http

import (
	"devscore/internal/domain"
	"devscore/internal/service"
)

// GenerateReportRequest links 缺省时使用已保存的资料
type GenerateReportRequest struct {
	Links       *domain.ProfileLinks `json:"links"`
	GithubToken string               `json:"githubToken"`
	BlogToken   string               `json:"blogToken"`
}

func (r GenerateReportRequest) ProfileLinks() domain.ProfileLinks {
	if r.Links == nil {
		return domain.ProfileLinks{}
	}
	return *r.Links
}

func (r GenerateReportRequest) Tokens() service.Tokens {
	return service.Tokens{GitHub: r.GithubToken, Blog: r.BlogToken}
}

// ReportDTO 列表和详情共用
type ReportDTO struct {
	ID            string                            `json:"id"`
	GithubScore   int                               `json:"githubScore"`
	LinkedinScore int                               `json:"linkedinScore"`
	BlogScore     int                               `json:"blogScore"`
	CodingScore   int                               `json:"codingScore"`
	TotalScore    int                               `json:"totalScore"`
	AnalysisData  map[string]*domain.AnalyzerResult `json:"analysisData"`
	Summary       string                            `json:"summary,omitempty"`
	CreatedAt     string                            `json:"createdAt"`
}

func ToReportDTO(r *domain.Report) ReportDTO {
	return ReportDTO{
		ID:            r.ID.String(),
		GithubScore:   r.GithubScore,
		LinkedinScore: r.LinkedinScore,
		BlogScore:     r.BlogScore,
		CodingScore:   r.CodingScore,
		TotalScore:    r.TotalScore,
		AnalysisData:  r.AnalysisData,
		Summary:       r.Summary,
		CreatedAt:     r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

type ProfileDTO struct {
	domain.ProfileLinks
	UpdatedAt string `json:"updatedAt"`
}

func ToProfileDTO(p *domain.Profile) ProfileDTO {
	return ProfileDTO{
		ProfileLinks: p.Links(),
		UpdatedAt:    p.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
