package jobs

import (
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/session"
	"github.com/vytor/lingoflash/internal/worker"
)

// WorkerQueue implements ReviewQueue using a worker pool
type WorkerQueue struct {
	pool  *worker.Pool
	words repository.WordRepository
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, words repository.WordRepository) ReviewQueue {
	return &WorkerQueue{
		pool:  pool,
		words: words,
	}
}

func (q *WorkerQueue) EnqueueReview(review session.Review) error {
	return q.pool.Submit(&worker.SaveReviewJob{
		Words:  q.words,
		Review: review,
	})
}
