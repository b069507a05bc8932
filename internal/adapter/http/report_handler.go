package http

import (
	"context"
	"net/http"
	"strconv"

	"devscore/internal/common"
	"devscore/internal/domain"
	"devscore/internal/logger"
	"devscore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReportUseCase 由 service.ReportService 实现
type ReportUseCase interface {
	GenerateFullReport(ctx context.Context, links domain.ProfileLinks, tokens service.Tokens) *domain.FullReport
	GenerateAndSave(ctx context.Context, ownerID uuid.UUID, links domain.ProfileLinks, tokens service.Tokens) (*domain.Report, error)
	ListReports(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Report, error)
	GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*domain.Report, error)
	GetProfile(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error)
	SaveProfile(ctx context.Context, ownerID uuid.UUID, links domain.ProfileLinks) (*domain.Profile, error)
}

type ReportHandler struct {
	reports ReportUseCase
	logger  logger.Logger
}

func NewReportHandler(uc ReportUseCase, log logger.Logger) *ReportHandler {
	return &ReportHandler{reports: uc, logger: log}
}

func (h *ReportHandler) GetProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(common.NewError(common.ErrCodeUnauthorized, "ownerID not found in context"))
		return
	}

	profile, err := h.reports.GetProfile(c.Request.Context(), ownerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(profile))
}

func (h *ReportHandler) UpdateProfile(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(common.NewError(common.ErrCodeUnauthorized, "ownerID not found in context"))
		return
	}

	var req domain.ProfileLinks
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(common.WrapError(common.ErrCodeInvalidInput, "invalid JSON body for profile update", err))
		return
	}

	profile, err := h.reports.SaveProfile(c.Request.Context(), ownerID, req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToProfileDTO(profile))
}

// CreateReport 生成并保存一份新报告
func (h *ReportHandler) CreateReport(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(common.NewError(common.ErrCodeUnauthorized, "ownerID not found in context"))
		return
	}

	var req GenerateReportRequest
	// 空 body 等同于全部缺省
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(common.WrapError(common.ErrCodeInvalidInput, "invalid JSON body for report", err))
			return
		}
	}

	report, err := h.reports.GenerateAndSave(c.Request.Context(), ownerID, req.ProfileLinks(), req.Tokens())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToReportDTO(report))
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(common.NewError(common.ErrCodeUnauthorized, "ownerID not found in context"))
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.Error(common.NewError(common.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	reports, err := h.reports.ListReports(c.Request.Context(), ownerID, limit)
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]ReportDTO, 0, len(reports))
	for _, r := range reports {
		out = append(out, ToReportDTO(r))
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

func (h *ReportHandler) GetReport(c *gin.Context) {
	ownerID, ok := GetOwnerIDFromGinContext(c)
	if !ok {
		c.Error(common.NewError(common.ErrCodeUnauthorized, "ownerID not found in context"))
		return
	}

	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(common.NewError(common.ErrCodeNotFound, "报告不存在"))
		return
	}

	report, err := h.reports.GetReport(c.Request.Context(), ownerID, reportID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToReportDTO(report))
}

// Analyze 只计算不保存
func (h *ReportHandler) Analyze(c *gin.Context) {
	var req GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(common.WrapError(common.ErrCodeInvalidInput, "invalid JSON body for analyze", err))
		return
	}
	if req.ProfileLinks().IsEmpty() {
		c.Error(common.NewError(common.ErrCodeInvalidInput, "at least one link is required"))
		return
	}

	full := h.reports.GenerateFullReport(c.Request.Context(), req.ProfileLinks(), req.Tokens())
	c.JSON(http.StatusOK, full)
}
