package service

import (
	"context"

	"devscore/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SaveReport(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) ListReports(ctx context.Context, ownerID uuid.UUID, limit int) ([]*domain.Report, error) {
	args := m.Called(ctx, ownerID, limit)
	return args.Get(0).([]*domain.Report), args.Error(1)
}

func (m *MockReportRepository) GetReport(ctx context.Context, ownerID, reportID uuid.UUID) (*domain.Report, error) {
	args := m.Called(ctx, ownerID, reportID)
	if r := args.Get(0); r != nil {
		return r.(*domain.Report), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) UpsertProfile(ctx context.Context, profile *domain.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockProfileRepository) GetProfile(ctx context.Context, ownerID uuid.UUID) (*domain.Profile, error) {
	args := m.Called(ctx, ownerID)
	if p := args.Get(0); p != nil {
		return p.(*domain.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileRepository) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.Profile), args.Error(1)
}

type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, report *domain.FullReport) (string, error) {
	args := m.Called(ctx, report)
	return args.String(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyReport(ctx context.Context, report *domain.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}
