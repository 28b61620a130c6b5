package services

import (
	"context"
	"math"
	"time"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

// DefaultStatsDays is the window used when a caller asks for zero days.
const DefaultStatsDays = 7

// ProgressService handles the study log and the figures derived from it
type ProgressService interface {
	RecordStudySession(ctx context.Context, summary models.SessionSummary) error
	UserProgress(ctx context.Context) (*models.UserProgress, error)
	StudyStats(ctx context.Context, days int) (*models.StudyStats, error)
	DailyActivity(ctx context.Context, days int) ([]models.DailyActivity, error)
}

type progressService struct {
	wordRepo     repository.WordRepository
	activityRepo repository.ActivityRepository
	clock        flashcard.Clock
}

// NewProgressService creates a new ProgressService
func NewProgressService(wordRepo repository.WordRepository, activityRepo repository.ActivityRepository, clock flashcard.Clock) ProgressService {
	if clock == nil {
		clock = time.Now
	}
	return &progressService{wordRepo: wordRepo, activityRepo: activityRepo, clock: clock}
}

// startOfDay truncates t to local midnight.
func startOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

func (s *progressService) RecordStudySession(ctx context.Context, summary models.SessionSummary) error {
	log := logger.FromContext(ctx)
	log.Debug("recording study session: id=%s, reviewed=%d, duration=%v", summary.SessionID, summary.TotalReviewed, summary.Duration)

	if summary.TotalReviewed == 0 {
		log.Debug("nothing reviewed, skipping activity log")
		return nil
	}

	activity := models.DailyActivity{
		StudyMinutes:   int(summary.Duration.Round(time.Minute) / time.Minute),
		WordsReviewed:  summary.TotalReviewed,
		WordsLearned:   summary.LearnedCount,
		CorrectReviews: summary.CorrectCount,
		TotalReviews:   summary.TotalReviewed,
	}
	if err := s.activityRepo.RecordSession(ctx, startOfDay(summary.EndedAt), activity); err != nil {
		log.Error("failed to record study session: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *progressService) UserProgress(ctx context.Context) (*models.UserProgress, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing user progress")

	learned, err := s.wordRepo.CountLearned(ctx)
	if err != nil {
		log.Error("failed to count learned words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	totals, err := s.activityRepo.Totals(ctx)
	if err != nil {
		log.Error("failed to load activity totals: %v", err)
		return nil, errors.NewInternalError(err)
	}
	dates, err := s.activityRepo.StudyDates(ctx)
	if err != nil {
		log.Error("failed to load study dates: %v", err)
		return nil, errors.NewInternalError(err)
	}

	p := &models.UserProgress{
		TotalWordsLearned: learned,
		StudyStreak:       studyStreak(dates, s.clock()),
		TotalStudyMinutes: totals.StudyMinutes,
	}
	if totals.TotalReviews > 0 {
		p.ReviewAccuracy = roundTo(float64(totals.CorrectReviews)/float64(totals.TotalReviews)*100, 1)
	}
	if len(dates) > 0 {
		last := dates[0]
		p.LastStudyDate = &last
	}
	return p, nil
}

// studyStreak counts consecutive study days ending today or yesterday.
// dates must be sorted newest first.
func studyStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	today := startOfDay(now)
	expected := startOfDay(dates[0])
	if !expected.Equal(today) && !expected.Equal(today.AddDate(0, 0, -1)) {
		return 0
	}

	streak := 0
	for _, d := range dates {
		d = startOfDay(d)
		if d.Equal(expected) {
			streak++
			expected = expected.AddDate(0, 0, -1)
			continue
		}
		if d.Before(expected) {
			break
		}
	}
	return streak
}

func (s *progressService) StudyStats(ctx context.Context, days int) (*models.StudyStats, error) {
	log := logger.FromContext(ctx)
	if days <= 0 {
		days = DefaultStatsDays
	}
	log.Debug("computing study stats: days=%d", days)

	since := startOfDay(s.clock()).AddDate(0, 0, -(days - 1))
	previousSince := since.AddDate(0, 0, -days)

	rows, err := s.activityRepo.ActivitySince(ctx, previousSince)
	if err != nil {
		log.Error("failed to load activity: %v", err)
		return nil, errors.NewInternalError(err)
	}

	var current, previous int
	for _, a := range rows {
		if a.StudyDate.Before(since) {
			previous += a.StudyMinutes
		} else {
			current += a.StudyMinutes
		}
	}

	stats := &models.StudyStats{
		Days:         days,
		TotalMinutes: current,
		DailyAverage: roundTo(float64(current)/float64(days), 1),
	}
	switch {
	case previous > 0:
		stats.WeekOverWeekChange = roundTo(float64(current-previous)/float64(previous)*100, 1)
	case current > 0:
		stats.WeekOverWeekChange = 100
	}
	return stats, nil
}

func (s *progressService) DailyActivity(ctx context.Context, days int) ([]models.DailyActivity, error) {
	log := logger.FromContext(ctx)
	if days <= 0 {
		days = DefaultStatsDays
	}

	since := startOfDay(s.clock()).AddDate(0, 0, -(days - 1))
	rows, err := s.activityRepo.ActivitySince(ctx, since)
	if err != nil {
		log.Error("failed to load activity: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rows == nil {
		rows = []models.DailyActivity{}
	}
	return rows, nil
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
