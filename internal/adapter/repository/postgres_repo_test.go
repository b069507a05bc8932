package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"devscore/internal/common"
	"devscore/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupMockDB 创建一个模拟的数据库连接
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	// 禁用日志以减少输出
	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	return gormDB, mock, func() { db.Close() }
}

var reportColumns = []string{
	"id", "owner_id", "github_score", "linkedin_score", "blog_score", "coding_score",
	"total_score", "analysis_data", "summary", "created_at",
}

func TestPostgresRepo_SaveReport(t *testing.T) {
	report := domain.NewReport(uuid.New(), &domain.FullReport{
		GithubScore: 90,
		TotalScore:  90,
		AnalysisData: map[string]*domain.AnalyzerResult{
			domain.KeyGitHub: {Platform: "GitHub", Score: 90, Metrics: map[string]any{}},
		},
	}, time.Now())

	tests := []struct {
		name        string
		setupMock   func(sqlmock.Sqlmock)
		expectError bool
	}{
		{
			name: "成功插入报告",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reports"`)).
					WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "数据库错误",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "reports"`)).
					WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupMockDB(t)
			defer cleanup()
			tt.setupMock(mock)

			repo := &PostgresRepo{db: gormDB}
			err := repo.SaveReport(context.Background(), report)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, common.IsCode(err, common.ErrCodeDatabase))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepo_ListReports(t *testing.T) {
	owner := uuid.New()
	now := time.Now()

	gormDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	rows := sqlmock.NewRows(reportColumns).
		AddRow(uuid.New().String(), owner.String(), 90, 50, 0, 0, 70,
			`{"github":{"platform":"GitHub","score":90,"metrics":{},"error":false}}`, "", now).
		AddRow(uuid.New().String(), owner.String(), 10, 0, 0, 0, 10,
			`{"github":{"platform":"GitHub","score":10,"metrics":{},"error":false}}`, "还行", now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports" WHERE owner_id = $1 ORDER BY created_at desc LIMIT $2`)).
		WithArgs(owner, MaxListLimit).
		WillReturnRows(rows)

	repo := &PostgresRepo{db: gormDB}
	reports, err := repo.ListReports(context.Background(), owner, 500)

	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, 70, reports[0].TotalScore)
	assert.Equal(t, owner, reports[0].OwnerID)
	require.Contains(t, reports[0].AnalysisData, domain.KeyGitHub)
	assert.Equal(t, 90, reports[0].AnalysisData[domain.KeyGitHub].Score)
	assert.Equal(t, "还行", reports[1].Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetReport(t *testing.T) {
	owner := uuid.New()
	reportID := uuid.New()

	tests := []struct {
		name      string
		setupMock func(sqlmock.Sqlmock)
		errCode   string
	}{
		{
			name: "找到报告",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(reportColumns).
					AddRow(reportID.String(), owner.String(), 0, 50, 0, 0, 50, `{}`, "", time.Now())
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports" WHERE id = $1 AND owner_id = $2`)).
					WillReturnRows(rows)
			},
		},
		{
			name: "报告不存在或属于别人",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports"`)).
					WillReturnRows(sqlmock.NewRows(reportColumns))
			},
			errCode: common.ErrCodeNotFound,
		},
		{
			name: "数据库错误",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "reports"`)).
					WillReturnError(errors.New("database error"))
			},
			errCode: common.ErrCodeDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gormDB, mock, cleanup := setupMockDB(t)
			defer cleanup()
			tt.setupMock(mock)

			repo := &PostgresRepo{db: gormDB}
			report, err := repo.GetReport(context.Background(), owner, reportID)

			if tt.errCode != "" {
				assert.Nil(t, report)
				assert.True(t, common.IsCode(err, tt.errCode))
			} else {
				require.NoError(t, err)
				assert.Equal(t, reportID, report.ID)
				assert.Equal(t, 50, report.TotalScore)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresRepo_UpsertProfile(t *testing.T) {
	gormDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "profiles" .* ON CONFLICT \("owner_id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repo := &PostgresRepo{db: gormDB}
	profile := domain.NewProfile(uuid.New(), domain.ProfileLinks{GithubURL: " https://github.com/alice "})
	err := repo.UpsertProfile(context.Background(), profile)

	assert.NoError(t, err)
	assert.Equal(t, "https://github.com/alice", profile.GithubURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_GetProfile(t *testing.T) {
	owner := uuid.New()
	columns := []string{"owner_id", "github_url", "linkedin_url", "blog_url", "coding_platform_url", "updated_at"}

	t.Run("找到资料", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		rows := sqlmock.NewRows(columns).
			AddRow(owner.String(), "https://github.com/alice", "", "https://dev.to/alice", "", time.Now())
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" WHERE owner_id = $1`)).
			WillReturnRows(rows)

		repo := &PostgresRepo{db: gormDB}
		profile, err := repo.GetProfile(context.Background(), owner)

		require.NoError(t, err)
		assert.Equal(t, "https://dev.to/alice", profile.Links().BlogURL)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("资料不存在", func(t *testing.T) {
		gormDB, mock, cleanup := setupMockDB(t)
		defer cleanup()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles"`)).
			WillReturnRows(sqlmock.NewRows(columns))

		repo := &PostgresRepo{db: gormDB}
		_, err := repo.GetProfile(context.Background(), owner)

		assert.True(t, common.IsCode(err, common.ErrCodeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresRepo_ListProfiles(t *testing.T) {
	gormDB, mock, cleanup := setupMockDB(t)
	defer cleanup()

	columns := []string{"owner_id", "github_url", "linkedin_url", "blog_url", "coding_platform_url", "updated_at"}
	rows := sqlmock.NewRows(columns).
		AddRow(uuid.New().String(), "https://github.com/a", "", "", "", time.Now()).
		AddRow(uuid.New().String(), "", "", "", "https://leetcode.com/b", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "profiles" ORDER BY owner_id`)).
		WillReturnRows(rows)

	repo := &PostgresRepo{db: gormDB}
	profiles, err := repo.ListProfiles(context.Background())

	require.NoError(t, err)
	assert.Len(t, profiles, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultListLimit, ClampLimit(0))
	assert.Equal(t, DefaultListLimit, ClampLimit(-3))
	assert.Equal(t, 5, ClampLimit(5))
	assert.Equal(t, MaxListLimit, ClampLimit(1000))
}
