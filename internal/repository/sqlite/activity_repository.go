package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

type activityRepository struct {
	db *sql.DB
}

// NewActivityRepository creates a new ActivityRepository implementation
func NewActivityRepository(db *sql.DB) repository.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) RecordSession(ctx context.Context, day time.Time, a models.DailyActivity) error {
	log := logger.FromContext(ctx).WithPrefix("activity_repo")
	date := day.Format(dateLayout)
	log.Debug("recording session: date=%s, minutes=%d, reviewed=%d, learned=%d",
		date, a.StudyMinutes, a.WordsReviewed, a.WordsLearned)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO daily_activity (study_date, study_minutes, words_reviewed, words_learned, correct_reviews, total_reviews)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (study_date) DO UPDATE SET
    study_minutes = study_minutes + excluded.study_minutes,
    words_reviewed = words_reviewed + excluded.words_reviewed,
    words_learned = words_learned + excluded.words_learned,
    correct_reviews = correct_reviews + excluded.correct_reviews,
    total_reviews = total_reviews + excluded.total_reviews
`, date, a.StudyMinutes, a.WordsReviewed, a.WordsLearned, a.CorrectReviews, a.TotalReviews)
	if err != nil {
		log.Error("failed to record session: %v", err)
	}
	return err
}

// ActivitySince returns the rows from the day of since onwards, oldest first.
func (r *activityRepository) ActivitySince(ctx context.Context, since time.Time) ([]models.DailyActivity, error) {
	log := logger.FromContext(ctx).WithPrefix("activity_repo")

	stmt, args, err := sqlBuilder.
		Select("study_date", "study_minutes", "words_reviewed", "words_learned", "correct_reviews", "total_reviews").
		From("daily_activity").
		Where("study_date >= ?", since.Format(dateLayout)).
		OrderBy("study_date ASC").
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to query activity: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.DailyActivity
	for rows.Next() {
		var (
			a    models.DailyActivity
			date string
		)
		if err := rows.Scan(&date, &a.StudyMinutes, &a.WordsReviewed, &a.WordsLearned, &a.CorrectReviews, &a.TotalReviews); err != nil {
			log.Error("failed to scan activity row: %v", err)
			return nil, err
		}
		if a.StudyDate, err = time.ParseInLocation(dateLayout, date, since.Location()); err != nil {
			log.Error("invalid study_date %q: %v", date, err)
			return nil, err
		}
		out = append(out, a)
	}
	log.Debug("found %d activity rows since %s", len(out), since.Format(dateLayout))
	return out, rows.Err()
}

func (r *activityRepository) StudyDates(ctx context.Context) ([]time.Time, error) {
	log := logger.FromContext(ctx).WithPrefix("activity_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT study_date FROM daily_activity
WHERE total_reviews > 0 OR study_minutes > 0
ORDER BY study_date DESC
`)
	if err != nil {
		log.Error("failed to query study dates: %v", err)
		return nil, err
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			log.Error("failed to scan study date: %v", err)
			return nil, err
		}
		d, err := time.ParseInLocation(dateLayout, date, time.Local)
		if err != nil {
			log.Error("invalid study_date %q: %v", date, err)
			return nil, err
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func (r *activityRepository) Totals(ctx context.Context) (models.DailyActivity, error) {
	var a models.DailyActivity
	err := r.db.QueryRowContext(ctx, `
SELECT COALESCE(SUM(study_minutes), 0), COALESCE(SUM(words_reviewed), 0), COALESCE(SUM(words_learned), 0),
       COALESCE(SUM(correct_reviews), 0), COALESCE(SUM(total_reviews), 0)
FROM daily_activity
`).Scan(&a.StudyMinutes, &a.WordsReviewed, &a.WordsLearned, &a.CorrectReviews, &a.TotalReviews)
	if err != nil {
		logger.FromContext(ctx).WithPrefix("activity_repo").Error("failed to sum activity: %v", err)
	}
	return a, err
}
