package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/session"
	"github.com/vytor/lingoflash/internal/testutil/mocks"
)

var start = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type recordingSink struct {
	reviews []session.Review
}

func (r *recordingSink) Save(_ context.Context, review session.Review) error {
	r.reviews = append(r.reviews, review)
	return nil
}

func word(term string) models.Word {
	return models.Word{Term: term, Definition: term + " (def)", Review: models.NewReviewState()}
}

func dueIn(term string, d time.Duration) models.Word {
	w := word(term)
	at := start.Add(d)
	w.Review.NextReview = &at
	return w
}

func newSession(t *testing.T, cards []models.Word, opts ...session.Option) (*session.Session, *fakeClock, *recordingSink) {
	t.Helper()
	clock := &fakeClock{now: start}
	sink := &recordingSink{}
	opts = append([]session.Option{session.WithClock(clock.Now), session.WithSink(sink)}, opts...)
	return session.New(cards, opts...), clock, sink
}

func reviewCurrent(t *testing.T, s *session.Session, score flashcard.Score) session.Outcome {
	t.Helper()
	require.NoError(t, s.Reveal())
	out, err := s.Score(context.Background(), score)
	require.NoError(t, err)
	return out
}

func TestNew_StartsPresentingFirstDueCard(t *testing.T) {
	s, _, _ := newSession(t, []models.Word{word("hund"), word("katze")})

	assert.Equal(t, session.Presenting, s.State())
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "hund", current.Term)
	idx, total := s.Position()
	assert.Equal(t, 1, idx)
	assert.Equal(t, 2, total)
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, start, s.StartedAt())
}

func TestNew_EmptyDueSetCompletesImmediately(t *testing.T) {
	s, _, _ := newSession(t, []models.Word{dueIn("später", 48*time.Hour)})

	assert.Equal(t, session.Completed, s.State())
	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 0, s.Stats().DueCount)
	assert.Equal(t, 100.0, s.Stats().Progress)
}

func TestNew_SelectsOnlyDueCardsInSourceOrder(t *testing.T) {
	cards := []models.Word{
		dueIn("morgen", 24*time.Hour),
		word("neu"),
		dueIn("gestern", -24*time.Hour),
		dueIn("jetzt", 0),
		dueIn("nächste woche", 7*24*time.Hour),
	}

	s, _, _ := newSession(t, cards)

	var terms []string
	for s.State() != session.Completed {
		current, ok := s.Current()
		require.True(t, ok)
		terms = append(terms, current.Term)
		reviewCurrent(t, s, flashcard.Good)
	}
	assert.Equal(t, []string{"neu", "gestern", "jetzt"}, terms)
}

func TestNew_UrgencyOrder(t *testing.T) {
	cards := []models.Word{
		dueIn("two days", -48*time.Hour),
		dueIn("one day", -24*time.Hour),
		word("never"),
		dueIn("five days", -120*time.Hour),
	}

	s, _, _ := newSession(t, cards, session.WithUrgencyOrder(true))

	var terms []string
	for s.State() != session.Completed {
		current, _ := s.Current()
		terms = append(terms, current.Term)
		reviewCurrent(t, s, flashcard.Easy)
	}
	assert.Equal(t, []string{"never", "five days", "two days", "one day"}, terms)
}

func TestNew_Limit(t *testing.T) {
	s, _, _ := newSession(t, []models.Word{word("a"), word("b"), word("c")}, session.WithLimit(2))

	assert.Equal(t, 2, s.Stats().DueCount)
}

func TestDueSelectionIsNotReevaluated(t *testing.T) {
	cards := []models.Word{word("a"), dueIn("soon", time.Hour)}
	s, clock, _ := newSession(t, cards)

	clock.Advance(3 * time.Hour)
	reviewCurrent(t, s, flashcard.Good)

	assert.Equal(t, session.Completed, s.State(), "card due after start must not join the session")
}

func TestReveal_Idempotent(t *testing.T) {
	s, _, _ := newSession(t, []models.Word{word("a"), word("b")})

	require.NoError(t, s.Reveal())
	stateOnce, statsOnce := s.State(), s.Stats()
	currentOnce, _ := s.Current()

	require.NoError(t, s.Reveal())

	assert.Equal(t, session.Revealed, s.State())
	assert.Equal(t, stateOnce, s.State())
	assert.Equal(t, statsOnce, s.Stats())
	currentTwice, _ := s.Current()
	assert.Equal(t, currentOnce, currentTwice)
}

func TestScore_BeforeRevealIsRejected(t *testing.T) {
	s, _, sink := newSession(t, []models.Word{word("a")})

	_, err := s.Score(context.Background(), flashcard.Good)

	assert.ErrorIs(t, err, session.ErrInvalidTransition)
	assert.Equal(t, session.Presenting, s.State())
	assert.Equal(t, 0, s.Stats().TotalReviewed)
	assert.Empty(t, sink.reviews)
}

func TestScore_InvalidScoreLeavesSessionUnchanged(t *testing.T) {
	s, _, sink := newSession(t, []models.Word{word("a")})
	require.NoError(t, s.Reveal())

	_, err := s.Score(context.Background(), 7)

	assert.ErrorIs(t, err, flashcard.ErrInvalidScore)
	assert.Equal(t, session.Revealed, s.State())
	assert.Equal(t, 0, s.Stats().TotalReviewed)
	assert.Empty(t, sink.reviews)
}

func TestScore_AfterCompletion(t *testing.T) {
	s, _, _ := newSession(t, []models.Word{word("a")})
	reviewCurrent(t, s, flashcard.Good)

	_, err := s.Score(context.Background(), flashcard.Good)
	assert.ErrorIs(t, err, session.ErrSessionCompleted)
	assert.ErrorIs(t, s.Reveal(), session.ErrSessionCompleted)
}

func TestScore_UpdatesCardAndEmitsToSink(t *testing.T) {
	s, clock, sink := newSession(t, []models.Word{word("haus")})
	clock.Advance(90 * time.Second)

	out := reviewCurrent(t, s, flashcard.Easy)

	reviewedAt := start.Add(90 * time.Second)
	assert.True(t, out.Correct)
	assert.Equal(t, session.Completed, out.State)
	assert.Equal(t, "Next review in 1 day", out.Feedback)
	assert.Equal(t, flashcard.Easy, out.Score)
	assert.Equal(t, reviewedAt, out.ReviewedAt)
	assert.Equal(t, 1, out.Word.Review.Repetitions)
	assert.Equal(t, 1, out.Word.Review.Interval)
	assert.InDelta(t, 2.6, out.Word.Review.EaseFactor, 1e-9)
	assert.Equal(t, 1, out.Word.ReviewCount)
	require.NotNil(t, out.Word.Review.LastReviewed)
	assert.Equal(t, reviewedAt, *out.Word.Review.LastReviewed)
	assert.Equal(t, reviewedAt.AddDate(0, 0, 1), *out.Word.Review.NextReview)
	assert.Nil(t, out.Previous.LastReviewed)
	assert.NoError(t, out.SaveErr)

	require.Len(t, sink.reviews, 1)
	assert.Equal(t, out.Review, sink.reviews[0])
}

func TestScore_CountersPerScore(t *testing.T) {
	scores := []flashcard.Score{5, 2, 3, 1, 4}
	cards := make([]models.Word, len(scores))
	for i := range cards {
		cards[i] = word(string(rune('a' + i)))
	}
	s, _, _ := newSession(t, cards)

	for i, score := range scores {
		before := s.Stats()
		reviewCurrent(t, s, score)
		after := s.Stats()

		assert.Equal(t, before.TotalReviewed+1, after.TotalReviewed, "step %d", i)
		if score >= 3 {
			assert.Equal(t, before.CorrectCount+1, after.CorrectCount, "step %d", i)
		} else {
			assert.Equal(t, before.CorrectCount, after.CorrectCount, "step %d", i)
		}
	}
}

func TestScenario_ThreeCardsFiveFiveOne(t *testing.T) {
	s, _, sink := newSession(t, []models.Word{word("eins"), word("zwei"), word("drei")})

	reviewCurrent(t, s, flashcard.Easy)
	reviewCurrent(t, s, flashcard.Easy)
	out := reviewCurrent(t, s, flashcard.Again)

	stats := s.Stats()
	assert.Equal(t, 3, stats.TotalReviewed)
	assert.Equal(t, 2, stats.CorrectCount)
	assert.Equal(t, 2, stats.LearnedCount)
	assert.Equal(t, session.Completed, s.State())
	assert.Equal(t, session.Completed, out.State)
	assert.Equal(t, "Card will be shown again soon", out.Feedback)
	assert.InDelta(t, 66.666, stats.Mastery, 0.01)
	assert.Equal(t, 100.0, stats.Progress)
	assert.Len(t, sink.reviews, 3)
}

func TestStats_Derived(t *testing.T) {
	cards := make([]models.Word, 12)
	for i := range cards {
		cards[i] = word(string(rune('a' + i)))
	}
	s, _, _ := newSession(t, cards)

	fresh := s.Stats()
	assert.Equal(t, 0.0, fresh.Mastery)
	assert.Equal(t, 0.0, fresh.Progress)
	assert.Equal(t, 1, fresh.Level)

	for i := 0; i < 10; i++ {
		score := flashcard.Good
		if i%2 == 0 {
			score = flashcard.Again
		}
		reviewCurrent(t, s, score)
	}

	stats := s.Stats()
	assert.Equal(t, 50.0, stats.Mastery)
	assert.InDelta(t, 83.333, stats.Progress, 0.01)
	assert.Equal(t, 2, stats.Level)
	assert.Equal(t, 2, s.Level())
}

func TestLearnedCountIgnoresPreviouslyReviewedCards(t *testing.T) {
	seen := dueIn("seen", -time.Hour)
	last := start.Add(-48 * time.Hour)
	seen.Review.LastReviewed = &last
	seen.ReviewCount = 3

	s, _, _ := newSession(t, []models.Word{seen, word("new")})
	reviewCurrent(t, s, flashcard.Good)
	reviewCurrent(t, s, flashcard.Good)

	assert.Equal(t, 1, s.Stats().LearnedCount)
}

func TestScore_SinkFailureDoesNotBlockProgress(t *testing.T) {
	saveErr := errors.New("network down")
	sink := new(mocks.MockSink)
	sink.On("Save", mock.Anything, mock.AnythingOfType("session.Review")).Return(saveErr)

	clock := &fakeClock{now: start}
	s := session.New([]models.Word{word("a"), word("b")}, session.WithClock(clock.Now), session.WithSink(sink))

	require.NoError(t, s.Reveal())
	out, err := s.Score(context.Background(), flashcard.Good)

	require.NoError(t, err)
	assert.ErrorIs(t, out.SaveErr, saveErr)
	assert.Equal(t, session.Presenting, s.State())
	assert.Equal(t, 1, s.Stats().TotalReviewed)
	assert.Equal(t, 1, s.Stats().CorrectCount)
	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "b", current.Term)
	sink.AssertExpectations(t)
}

func TestScore_WithoutSink(t *testing.T) {
	s := session.New([]models.Word{word("a")}, session.WithClock(func() time.Time { return start }))

	require.NoError(t, s.Reveal())
	out, err := s.Score(context.Background(), flashcard.Good)

	require.NoError(t, err)
	assert.NoError(t, out.SaveErr)
	assert.Equal(t, 1, out.Word.Review.Repetitions)
}

func TestSourceCardsAreNotMutated(t *testing.T) {
	cards := []models.Word{word("a")}
	s, _, _ := newSession(t, cards)

	reviewCurrent(t, s, flashcard.Easy)

	assert.Equal(t, 0, cards[0].ReviewCount)
	assert.Nil(t, cards[0].Review.NextReview)
	assert.Equal(t, 0, cards[0].Review.Repetitions)
}

func TestSummary(t *testing.T) {
	s, clock, _ := newSession(t, []models.Word{word("a"), word("b")}, session.WithCategory("animals"), session.WithID("sess-1"))
	reviewCurrent(t, s, flashcard.Good)
	clock.Advance(4 * time.Minute)
	reviewCurrent(t, s, flashcard.Again)

	summary := s.Summary()

	assert.Equal(t, "sess-1", summary.SessionID)
	assert.Equal(t, "animals", summary.Category)
	assert.Equal(t, start, summary.StartedAt)
	assert.Equal(t, 4*time.Minute, summary.Duration)
	assert.Equal(t, 2, summary.DueCount)
	assert.Equal(t, 2, summary.TotalReviewed)
	assert.Equal(t, 1, summary.CorrectCount)
	assert.Equal(t, 1, summary.LearnedCount)
	assert.Equal(t, 4*time.Minute, s.Elapsed())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "presenting", session.Presenting.String())
	assert.Equal(t, "revealed", session.Revealed.String())
	assert.Equal(t, "completed", session.Completed.String())
}
