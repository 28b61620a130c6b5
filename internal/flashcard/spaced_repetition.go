package flashcard

import (
	"fmt"
	"math"
	"time"

	"github.com/vytor/lingoflash/internal/models"
)

// Clock supplies the current time.
type Clock func() time.Time

// Next applies the SM-2 update for score to previous and schedules the
// card relative to now. A nil previous is treated as a never-reviewed card.
// The input state is not modified.
func Next(score Score, previous *models.ReviewState, now time.Time) (models.ReviewState, error) {
	if !score.IsValid() {
		return models.ReviewState{}, fmt.Errorf("%w: got %d", ErrInvalidScore, int(score))
	}

	state := models.NewReviewState()
	if previous != nil {
		state = previous.WithDefaults()
	}

	penalty := float64(5 - score)
	ef := state.EaseFactor + 0.1 - penalty*(0.08+penalty*0.02)
	if ef < models.MinEaseFactor {
		ef = models.MinEaseFactor
	}

	if !score.Passed() {
		state.Repetitions = 0
		state.Interval = 1
	} else {
		state.Repetitions++
		switch state.Repetitions {
		case 1:
			state.Interval = 1
		case 2:
			state.Interval = 6
		default:
			state.Interval = int(math.Round(float64(state.Interval) * ef))
		}
	}

	state.EaseFactor = ef
	due := now.AddDate(0, 0, state.Interval)
	state.NextReview = &due
	return state, nil
}

// Scheduler computes review states against an injected time source.
type Scheduler struct {
	now Clock
}

// NewScheduler returns a Scheduler reading time from now, or the wall
// clock when now is nil.
func NewScheduler(now Clock) *Scheduler {
	if now == nil {
		now = time.Now
	}
	return &Scheduler{now: now}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.now()
}

// ComputeNextReview is Next evaluated at the scheduler's current time.
func (s *Scheduler) ComputeNextReview(score Score, previous *models.ReviewState) (models.ReviewState, error) {
	return Next(score, previous, s.now())
}

// Preview returns the state each canonical score would produce.
func (s *Scheduler) Preview(previous *models.ReviewState) map[Score]models.ReviewState {
	return Preview(previous, s.now())
}

// Preview returns the state each canonical score would produce at now.
func Preview(previous *models.ReviewState, now time.Time) map[Score]models.ReviewState {
	out := make(map[Score]models.ReviewState, len(CanonicalScores))
	for _, score := range CanonicalScores {
		// canonical scores are always valid
		next, _ := Next(score, previous, now)
		out[score] = next
	}
	return out
}

// Feedback describes the scheduling outcome to the learner.
func Feedback(score Score, state models.ReviewState) string {
	if !score.Passed() {
		return "Card will be shown again soon"
	}
	if state.Interval == 1 {
		return "Next review in 1 day"
	}
	return fmt.Sprintf("Next review in %d days", state.Interval)
}

// Mastered reports whether a card has settled into long review cycles.
func Mastered(state models.ReviewState) bool {
	return state.Repetitions >= 5 && state.Interval >= 30
}

// IsDue reports whether a card with state is eligible for review at now.
func IsDue(state models.ReviewState, now time.Time) bool {
	return state.IsDue(now)
}
