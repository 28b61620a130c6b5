package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/session"
)

// MockReviewQueue is a mock implementation of jobs.ReviewQueue
type MockReviewQueue struct {
	mock.Mock
}

func (m *MockReviewQueue) EnqueueReview(review session.Review) error {
	args := m.Called(review)
	return args.Error(0)
}
