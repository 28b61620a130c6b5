package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/models"
)

// MockActivityRepository is a mock implementation of repository.ActivityRepository
type MockActivityRepository struct {
	mock.Mock
}

func (m *MockActivityRepository) RecordSession(ctx context.Context, day time.Time, activity models.DailyActivity) error {
	args := m.Called(ctx, day, activity)
	return args.Error(0)
}

func (m *MockActivityRepository) ActivitySince(ctx context.Context, since time.Time) ([]models.DailyActivity, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.DailyActivity), args.Error(1)
}

func (m *MockActivityRepository) StudyDates(ctx context.Context) ([]time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockActivityRepository) Totals(ctx context.Context) (models.DailyActivity, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.DailyActivity), args.Error(1)
}
