// Package session drives a single review pass over the due cards of one
// category: it presents cards in order, applies scheduler results on every
// score and keeps the running session counters.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

var (
	// ErrInvalidTransition is returned when a card is scored before its
	// answer has been revealed.
	ErrInvalidTransition = errors.New("session: answer must be revealed before scoring")
	// ErrSessionCompleted is returned for any transition after the last card.
	ErrSessionCompleted = errors.New("session: already completed")
)

// State is the position of the session in its review cycle.
type State int

const (
	Presenting State = iota + 1
	Revealed
	Completed
)

func (s State) String() string {
	switch s {
	case Presenting:
		return "presenting"
	case Revealed:
		return "revealed"
	case Completed:
		return "completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Review is one scored card as handed to the persistence sink.
type Review struct {
	Word       models.Word        `json:"word"`
	Previous   models.ReviewState `json:"previous"`
	Score      flashcard.Score    `json:"score"`
	ReviewedAt time.Time          `json:"reviewed_at"`
}

// Sink persists scored cards. Implementations may queue the work and
// return before it is done.
type Sink interface {
	Save(ctx context.Context, review Review) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, review Review) error

func (f SinkFunc) Save(ctx context.Context, review Review) error {
	return f(ctx, review)
}

// Outcome is the result of scoring the current card.
type Outcome struct {
	Review
	Correct  bool   `json:"correct"`
	Feedback string `json:"feedback"`
	State    State  `json:"state"`
	// SaveErr is set when the sink rejected the update. Session counters
	// have advanced regardless.
	SaveErr error `json:"-"`
}

// Stats is derived from the counters on every call.
type Stats struct {
	DueCount      int     `json:"due_count"`
	TotalReviewed int     `json:"total_reviewed"`
	CorrectCount  int     `json:"correct_count"`
	LearnedCount  int     `json:"learned_count"`
	Mastery       float64 `json:"mastery"`
	Progress      float64 `json:"progress"`
	Level         int     `json:"level"`
}

type Option func(*Session)

func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

func WithCategory(category string) Option {
	return func(s *Session) { s.category = category }
}

// WithClock sets the time source used for due selection and scheduling.
func WithClock(clock flashcard.Clock) Option {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithSink(sink Sink) Option {
	return func(s *Session) { s.sink = sink }
}

func WithLogger(l *logger.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithUrgencyOrder sorts due cards by due date, oldest first, instead of
// keeping the source order. Never-scheduled cards come first.
func WithUrgencyOrder(enabled bool) Option {
	return func(s *Session) { s.urgency = enabled }
}

// WithLimit caps the number of due cards in the session. Zero means no cap.
func WithLimit(n int) Option {
	return func(s *Session) { s.limit = n }
}

// Session is an in-memory review pass. It is never persisted; only the
// cards it scores are.
type Session struct {
	mu sync.Mutex

	id        string
	category  string
	cards     []models.Word
	index     int
	state     State
	correct   int
	total     int
	learned   int
	startedAt time.Time

	clock   flashcard.Clock
	sink    Sink
	log     *logger.Logger
	urgency bool
	limit   int
}

// New builds a session over the cards of source that are due now. Due
// selection happens once; cards becoming due later are not added.
func New(source []models.Word, opts ...Option) *Session {
	s := &Session{
		clock: time.Now,
		log:   logger.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.log = s.log.WithPrefix("session").WithField("session_id", s.id)

	s.startedAt = s.clock()
	s.cards = selectDue(source, s.startedAt, s.urgency, s.limit)
	s.state = Presenting
	if len(s.cards) == 0 {
		s.state = Completed
	}

	s.log.Debug("session created: category=%s, source=%d, due=%d", s.category, len(source), len(s.cards))
	return s
}

func selectDue(source []models.Word, now time.Time, urgency bool, limit int) []models.Word {
	due := make([]models.Word, 0, len(source))
	for _, w := range source {
		if w.Review.IsDue(now) {
			due = append(due, w)
		}
	}
	if urgency {
		sort.SliceStable(due, func(i, j int) bool {
			return dueTime(due[i]).Before(dueTime(due[j]))
		})
	}
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due
}

func dueTime(w models.Word) time.Time {
	if w.Review.NextReview == nil {
		return time.Time{}
	}
	return *w.Review.NextReview
}

func (s *Session) ID() string { return s.id }

func (s *Session) Category() string { return s.category }

func (s *Session) StartedAt() time.Time { return s.startedAt }

// Elapsed returns the time since the session started.
func (s *Session) Elapsed() time.Duration {
	return s.clock().Sub(s.startedAt)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns a copy of the card being reviewed. ok is false once the
// session has completed.
func (s *Session) Current() (word models.Word, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Completed {
		return models.Word{}, false
	}
	return s.cards[s.index], true
}

// Position returns the 1-based number of the current card and the number
// of due cards. After completion it returns (total, total).
func (s *Session) Position() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	total = len(s.cards)
	if s.state == Completed {
		return total, total
	}
	return s.index + 1, total
}

// Reveal shows the answer of the current card. Revealing twice is a no-op.
func (s *Session) Reveal() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Completed:
		return ErrSessionCompleted
	case Revealed:
		return nil
	}
	s.state = Revealed
	s.log.Debug("card revealed: index=%d", s.index)
	return nil
}

// Score rates the revealed card, advances the session and hands the updated
// card to the sink. An invalid score leaves the session unchanged. A sink
// failure is reported in Outcome.SaveErr and never undoes the transition.
func (s *Session) Score(ctx context.Context, score flashcard.Score) (Outcome, error) {
	s.mu.Lock()
	switch s.state {
	case Completed:
		s.mu.Unlock()
		return Outcome{}, ErrSessionCompleted
	case Presenting:
		s.mu.Unlock()
		return Outcome{}, ErrInvalidTransition
	}

	card := s.cards[s.index]
	now := s.clock()
	next, err := flashcard.Next(score, &card.Review, now)
	if err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}

	firstReview := card.Review.LastReviewed == nil && card.ReviewCount == 0
	updated := card
	updated.Review = next
	updated.Review.LastReviewed = &now
	updated.ReviewCount++

	s.total++
	if score.Passed() {
		s.correct++
		if firstReview {
			s.learned++
		}
	}
	s.index++
	if s.index >= len(s.cards) {
		s.state = Completed
	} else {
		s.state = Presenting
	}

	out := Outcome{
		Review: Review{
			Word:       updated,
			Previous:   card.Review,
			Score:      score,
			ReviewedAt: now,
		},
		Correct:  score.Passed(),
		Feedback: flashcard.Feedback(score, next),
		State:    s.state,
	}
	sink := s.sink
	s.mu.Unlock()

	s.log.Debug("card scored: term=%s, score=%d, interval=%d, ease=%.2f", updated.Term, int(score), next.Interval, next.EaseFactor)

	if sink != nil {
		if err := sink.Save(ctx, out.Review); err != nil {
			s.log.Warn("failed to persist review for %q: %v", updated.Term, err)
			out.SaveErr = err
		}
	}
	return out, nil
}

// Stats returns the session counters and the percentages derived from them.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	due := len(s.cards)
	st := Stats{
		DueCount:      due,
		TotalReviewed: s.total,
		CorrectCount:  s.correct,
		LearnedCount:  s.learned,
		Level:         s.total/10 + 1,
	}
	st.Mastery = float64(s.correct) / float64(max(s.total, 1)) * 100
	if due == 0 {
		st.Progress = 100
	} else {
		st.Progress = float64(s.total) / float64(due) * 100
	}
	return st
}

// Level is one plus a tenth of the cards reviewed so far.
func (s *Session) Level() int {
	return s.Stats().Level
}

// Summary reports the session for the daily activity log.
func (s *Session) Summary() models.SessionSummary {
	st := s.Stats()
	now := s.clock()
	return models.SessionSummary{
		SessionID:     s.id,
		Category:      s.category,
		StartedAt:     s.startedAt,
		EndedAt:       now,
		Duration:      now.Sub(s.startedAt),
		DueCount:      st.DueCount,
		TotalReviewed: st.TotalReviewed,
		CorrectCount:  st.CorrectCount,
		LearnedCount:  st.LearnedCount,
	}
}
