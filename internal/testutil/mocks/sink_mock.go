package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/lingoflash/internal/session"
)

// MockSink is a mock implementation of session.Sink
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Save(ctx context.Context, review session.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
