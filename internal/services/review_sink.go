package services

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/vytor/lingoflash/internal/jobs"
	"github.com/vytor/lingoflash/internal/session"
)

// ErrPersistenceFailure wraps every error of a rejected review write.
var ErrPersistenceFailure = stderrors.New("persistence failure")

// PoolSink is a session.Sink that hands reviews to the background queue
// and returns before they are written.
type PoolSink struct {
	queue jobs.ReviewQueue
}

func NewPoolSink(queue jobs.ReviewQueue) *PoolSink {
	return &PoolSink{queue: queue}
}

func (s *PoolSink) Save(_ context.Context, review session.Review) error {
	if err := s.queue.EnqueueReview(review); err != nil {
		return fmt.Errorf("%w: queue review of word %d: %w", ErrPersistenceFailure, review.Word.ID, err)
	}
	return nil
}
