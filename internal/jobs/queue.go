package jobs

import "github.com/vytor/lingoflash/internal/session"

// ReviewQueue provides an abstraction for enqueueing background review writes
type ReviewQueue interface {
	EnqueueReview(review session.Review) error
}
