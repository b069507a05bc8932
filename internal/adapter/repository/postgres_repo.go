package repository

import (
	"context"
	"errors"

	"devscore/internal/common"
	"devscore/internal/domain"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// PostgresRepo 同时实现 port.ReportRepository 和 port.ProfileRepository
type PostgresRepo struct {
	db *gorm.DB
}

// NewPostgresRepo 初始化数据库连接并自动迁移表结构
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	if err := db.AutoMigrate(&domain.Report{}, &domain.Profile{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &PostgresRepo{db: db}, nil
}

// SaveReport 报告只插入，不更新
func (r *PostgresRepo) SaveReport(ctx context.Context, report *domain.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存报告失败", err)
	}
	return nil
}

// ListReports 按创建时间倒序返回某个用户的报告
func (r *PostgresRepo) ListReports(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Report, error) {
	var reports []*domain.Report
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at desc").
		Limit(ClampLimit(limit)).
		Find(&reports).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询报告失败", err)
	}
	return reports, nil
}

// GetReport 只能取到属于 ownerID 的报告，别人的报告一律视为不存在
func (r *PostgresRepo) GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*domain.Report, error) {
	var report domain.Report
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", reportID, ownerID).
		First(&report).Error
	if err != nil {
		return nil, notFoundOr(err, "报告不存在", "查询报告失败")
	}
	return &report, nil
}

// UpsertProfile 每个用户只有一行，冲突时覆盖链接
func (r *PostgresRepo) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"github_url", "linkedin_url", "blog_url", "coding_platform_url", "updated_at"}),
	}).Create(profile).Error
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存资料失败", err)
	}
	return nil
}

func (r *PostgresRepo) GetProfile(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&profile).Error
	if err != nil {
		return nil, notFoundOr(err, "资料不存在", "查询资料失败")
	}
	return &profile, nil
}

// ListProfiles 定时重算用，返回全部资料
func (r *PostgresRepo) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	var profiles []*domain.Profile
	if err := r.db.WithContext(ctx).Order("owner_id").Find(&profiles).Error; err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "查询资料失败", err)
	}
	return profiles, nil
}

// ClampLimit 把分页大小限制在 [1, MaxListLimit]，非正数取默认值
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

func notFoundOr(err error, notFoundMsg, failMsg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.WrapError(common.ErrCodeNotFound, notFoundMsg, err)
	}
	return common.WrapError(common.ErrCodeDatabase, failMsg, err)
}
