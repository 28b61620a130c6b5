package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("repository: not found")

// WordRepository handles vocabulary and review state data access
type WordRepository interface {
	// Upsert inserts the word or, when the term already exists for the
	// language pair, updates its content and keeps its review state.
	Upsert(ctx context.Context, word models.Word) (int64, error)
	Get(ctx context.Context, id int64) (*models.Word, error)
	List(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
	Count(ctx context.Context, filter models.WordFilter) (int, error)
	Delete(ctx context.Context, id int64) error
	UpdateReview(ctx context.Context, word models.Word) error
	CountLearned(ctx context.Context) (int, error)
	InsertReviewHistory(ctx context.Context, h models.ReviewHistory) error
	ReviewHistory(ctx context.Context, wordID int64, limit int) ([]models.ReviewHistory, error)
}

// ActivityRepository handles the per-day study log
type ActivityRepository interface {
	// RecordSession adds a finished session to the row of its day.
	RecordSession(ctx context.Context, day time.Time, activity models.DailyActivity) error
	ActivitySince(ctx context.Context, since time.Time) ([]models.DailyActivity, error)
	// StudyDates returns every day with activity, most recent first.
	StudyDates(ctx context.Context) ([]time.Time, error)
	Totals(ctx context.Context) (models.DailyActivity, error)
}
