package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/session"
	"github.com/vytor/lingoflash/internal/testutil"
	"github.com/vytor/lingoflash/internal/testutil/mocks"
)

type studyFixture struct {
	svc      services.StudyService
	words    *mocks.MockWordRepository
	progress *mocks.MockProgressService

	mu    sync.Mutex
	now   time.Time
	saved []session.Review
	fail  error
}

func newStudyFixture(cfg services.StudyConfig) *studyFixture {
	f := &studyFixture{
		words:    new(mocks.MockWordRepository),
		progress: new(mocks.MockProgressService),
		now:      time.Date(2026, 7, 1, 18, 0, 0, 0, time.UTC),
	}
	sink := session.SinkFunc(func(_ context.Context, r session.Review) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.saved = append(f.saved, r)
		return f.fail
	})
	f.svc = services.NewStudyService(f.words, f.progress, sink, f.clock, cfg)
	return f
}

func (f *studyFixture) clock() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *studyFixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func numberedWords(terms ...string) []models.Word {
	out := make([]models.Word, len(terms))
	for i, term := range terms {
		out[i] = testutil.NewWord(term, "travel")
		out[i].ID = int64(i + 1)
	}
	return out
}

func (f *studyFixture) start(t *testing.T, words []models.Word) *session.Session {
	t.Helper()
	f.words.On("List", mock.Anything, mock.MatchedBy(func(filter models.WordFilter) bool {
		return filter.Category == "travel" && filter.DueAt != nil
	})).Return(words, nil).Once()

	sess, err := f.svc.StartSession(context.Background(), services.StartSessionRequest{
		Category: "travel", SourceLang: "en", TargetLang: "de",
	})
	require.NoError(t, err)
	return sess
}

func TestStudySessionFullPass(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{TTL: time.Hour})
	sess := f.start(t, numberedWords("train", "ticket"))
	ctx := context.Background()

	got, err := f.svc.GetSession(ctx, sess.ID())
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, "travel", got.Category())

	f.progress.On("RecordStudySession", mock.Anything, mock.MatchedBy(func(s models.SessionSummary) bool {
		return s.SessionID == sess.ID() && s.TotalReviewed == 2 && s.CorrectCount == 1 && s.LearnedCount == 1 &&
			s.Duration == 3*time.Minute
	})).Return(nil).Once()

	_, err = f.svc.Reveal(ctx, sess.ID())
	require.NoError(t, err)
	f.advance(time.Minute)
	out, _, err := f.svc.Score(ctx, sess.ID(), flashcard.Easy)
	require.NoError(t, err)
	assert.True(t, out.Correct)
	assert.Equal(t, session.Presenting, out.State)

	_, err = f.svc.Reveal(ctx, sess.ID())
	require.NoError(t, err)
	f.advance(2 * time.Minute)
	out, view, err := f.svc.Score(ctx, sess.ID(), flashcard.Again)
	require.NoError(t, err)
	assert.False(t, out.Correct)
	assert.Equal(t, session.Completed, out.State)
	assert.Equal(t, session.Completed, view.State())

	f.progress.AssertExpectations(t)
	require.Len(t, f.saved, 2)
	assert.Equal(t, "train", f.saved[0].Word.Term)
	assert.Equal(t, flashcard.Again, f.saved[1].Score)
}

func TestStudyScoreErrorsMapToAppErrors(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{})
	sess := f.start(t, numberedWords("road"))
	ctx := context.Background()

	_, _, err := f.svc.Score(ctx, sess.ID(), flashcard.Good)
	requireAppError(t, err, apperrors.ErrCodeConflict)

	_, err = f.svc.Reveal(ctx, sess.ID())
	require.NoError(t, err)
	_, _, err = f.svc.Score(ctx, sess.ID(), flashcard.Score(7))
	requireAppError(t, err, apperrors.ErrCodeValidation)

	f.progress.On("RecordStudySession", mock.Anything, mock.Anything).Return(nil)
	_, _, err = f.svc.Score(ctx, sess.ID(), flashcard.Good)
	require.NoError(t, err)

	_, _, err = f.svc.Score(ctx, sess.ID(), flashcard.Good)
	requireAppError(t, err, apperrors.ErrCodeConflict)
	_, err = f.svc.Reveal(ctx, sess.ID())
	requireAppError(t, err, apperrors.ErrCodeConflict)
}

func TestStudyUnknownSession(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{})
	ctx := context.Background()

	_, err := f.svc.GetSession(ctx, "missing")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	_, err = f.svc.Reveal(ctx, "missing")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	_, _, err = f.svc.Score(ctx, "missing", flashcard.Good)
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	requireAppError(t, f.svc.Abandon(ctx, "missing"), apperrors.ErrCodeNotFound)
}

func TestStudySaveFailureDoesNotFailScore(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{})
	f.fail = services.ErrPersistenceFailure
	sess := f.start(t, numberedWords("map", "bus"))
	ctx := context.Background()

	_, err := f.svc.Reveal(ctx, sess.ID())
	require.NoError(t, err)
	out, _, err := f.svc.Score(ctx, sess.ID(), flashcard.Good)

	require.NoError(t, err)
	assert.ErrorIs(t, out.SaveErr, services.ErrPersistenceFailure)
	assert.Equal(t, 1, sess.Stats().TotalReviewed)
}

func TestStudyAbandonRecordsPartialSession(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{})
	sess := f.start(t, numberedWords("hotel", "beach"))
	ctx := context.Background()

	_, err := f.svc.Reveal(ctx, sess.ID())
	require.NoError(t, err)
	_, _, err = f.svc.Score(ctx, sess.ID(), flashcard.Good)
	require.NoError(t, err)

	f.progress.On("RecordStudySession", mock.Anything, mock.MatchedBy(func(s models.SessionSummary) bool {
		return s.TotalReviewed == 1 && s.DueCount == 2
	})).Return(errors.New("locked")).Once()

	require.NoError(t, f.svc.Abandon(ctx, sess.ID()))
	f.progress.AssertExpectations(t)

	_, err = f.svc.GetSession(ctx, sess.ID())
	requireAppError(t, err, apperrors.ErrCodeNotFound)
}

func TestStudyLimitAndUrgency(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{OrderByUrgency: true, CardLimit: 5})
	words := numberedWords("late", "fresh", "later")
	early := f.now.Add(-2 * time.Hour)
	earlier := f.now.Add(-4 * time.Hour)
	words[0].Review.NextReview = &early
	words[2].Review.NextReview = &earlier

	f.words.On("List", mock.Anything, mock.Anything).Return(words, nil).Once()
	sess, err := f.svc.StartSession(context.Background(), services.StartSessionRequest{Category: "travel", Limit: 2})
	require.NoError(t, err)

	_, total := sess.Position()
	assert.Equal(t, 2, total)
	current, ok := sess.Current()
	require.True(t, ok)
	assert.Equal(t, "fresh", current.Term)
}

func TestStudyStartListFailure(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{})
	f.words.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("no such table"))

	_, err := f.svc.StartSession(context.Background(), services.StartSessionRequest{Category: "travel"})
	requireAppError(t, err, apperrors.ErrCodeInternal)
}

func TestStudySweepDropsIdleSessions(t *testing.T) {
	f := newStudyFixture(services.StudyConfig{TTL: 30 * time.Minute})
	idle := f.start(t, numberedWords("north"))
	f.advance(20 * time.Minute)
	active := f.start(t, numberedWords("south"))
	ctx := context.Background()

	f.advance(15 * time.Minute)
	_, err := f.svc.GetSession(ctx, active.ID())
	require.NoError(t, err)

	assert.Equal(t, 1, f.svc.Sweep(ctx))

	_, err = f.svc.GetSession(ctx, idle.ID())
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	_, err = f.svc.GetSession(ctx, active.ID())
	assert.NoError(t, err)
}
