package worker

import (
	"context"
	"fmt"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/session"
)

// SaveReviewJob writes a scored card back to the store and appends it to
// the word's review history.
type SaveReviewJob struct {
	Words  repository.WordRepository
	Review session.Review
}

func (j *SaveReviewJob) Name() string { return "save_review" }

func (j *SaveReviewJob) Run(ctx context.Context) error {
	w := j.Review.Word
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"word_id": w.ID,
		"score":   int(j.Review.Score),
	})

	if err := j.Words.UpdateReview(ctx, w); err != nil {
		return fmt.Errorf("update review state of word %d: %w", w.ID, err)
	}

	h := models.ReviewHistory{
		WordID:       w.ID,
		Score:        int(j.Review.Score),
		ReviewedAt:   j.Review.ReviewedAt,
		EaseFactor:   w.Review.EaseFactor,
		IntervalDays: w.Review.Interval,
	}
	if w.Review.NextReview != nil {
		h.NextReview = *w.Review.NextReview
	}
	if err := j.Words.InsertReviewHistory(ctx, h); err != nil {
		// The review state is already saved.
		log.Warn("failed to store review history: %v", err)
	}
	log.Debug("review saved: next_review=%s", h.NextReview.Format("2006-01-02"))
	return nil
}
