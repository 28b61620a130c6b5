package services

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
	"github.com/vytor/lingoflash/internal/session"
)

// StudyConfig tunes how sessions are built and how long idle ones live.
type StudyConfig struct {
	OrderByUrgency bool
	CardLimit      int
	TTL            time.Duration
}

// StartSessionRequest selects the cards of a new session.
type StartSessionRequest struct {
	Category   string
	SourceLang string
	TargetLang string
	// Limit overrides StudyConfig.CardLimit when positive.
	Limit int
}

// StudyService keeps the live study sessions
type StudyService interface {
	StartSession(ctx context.Context, req StartSessionRequest) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	Reveal(ctx context.Context, id string) (*session.Session, error)
	Score(ctx context.Context, id string, score flashcard.Score) (session.Outcome, *session.Session, error)
	Abandon(ctx context.Context, id string) error
	// Sweep drops sessions idle for longer than the TTL and returns how
	// many were removed.
	Sweep(ctx context.Context) int
	// Run sweeps every interval until ctx is done.
	Run(ctx context.Context, interval time.Duration)
}

type liveSession struct {
	sess       *session.Session
	lastAccess time.Time
}

type studyService struct {
	wordRepo repository.WordRepository
	progress ProgressService
	sink     session.Sink
	clock    flashcard.Clock
	cfg      StudyConfig

	mu       sync.Mutex
	sessions map[string]*liveSession
}

// NewStudyService creates a new StudyService
func NewStudyService(wordRepo repository.WordRepository, progress ProgressService, sink session.Sink, clock flashcard.Clock, cfg StudyConfig) StudyService {
	if clock == nil {
		clock = time.Now
	}
	return &studyService{
		wordRepo: wordRepo,
		progress: progress,
		sink:     sink,
		clock:    clock,
		cfg:      cfg,
		sessions: make(map[string]*liveSession),
	}
}

func (s *studyService) StartSession(ctx context.Context, req StartSessionRequest) (*session.Session, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting session: category=%s, pair=%s-%s", req.Category, req.SourceLang, req.TargetLang)

	now := s.clock()
	words, err := s.wordRepo.List(ctx, models.WordFilter{
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Category:   req.Category,
		DueAt:      &now,
	})
	if err != nil {
		log.Error("failed to load due words: %v", err)
		return nil, errors.NewInternalError(err)
	}

	limit := s.cfg.CardLimit
	if req.Limit > 0 {
		limit = req.Limit
	}
	sess := session.New(words,
		session.WithCategory(req.Category),
		session.WithClock(s.clock),
		session.WithSink(s.sink),
		session.WithUrgencyOrder(s.cfg.OrderByUrgency),
		session.WithLimit(limit),
		session.WithLogger(log),
	)

	s.mu.Lock()
	s.sessions[sess.ID()] = &liveSession{sess: sess, lastAccess: now}
	s.mu.Unlock()

	_, total := sess.Position()
	log.Info("session started: id=%s, due=%d", sess.ID(), total)
	return sess, nil
}

func (s *studyService) lookup(id string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	live, ok := s.sessions[id]
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	live.lastAccess = s.clock()
	return live.sess, nil
}

func (s *studyService) GetSession(ctx context.Context, id string) (*session.Session, error) {
	logger.FromContext(ctx).Debug("getting session: id=%s", id)
	return s.lookup(id)
}

func (s *studyService) Reveal(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := sess.Reveal(); err != nil {
		return nil, sessionError(err)
	}
	return sess, nil
}

// Score rates the current card of the session. A failed background save
// does not fail the call; it is reported in Outcome.SaveErr.
func (s *studyService) Score(ctx context.Context, id string, score flashcard.Score) (session.Outcome, *session.Session, error) {
	log := logger.FromContext(ctx)
	sess, err := s.lookup(id)
	if err != nil {
		return session.Outcome{}, nil, err
	}

	out, err := sess.Score(ctx, score)
	if err != nil {
		return session.Outcome{}, nil, sessionError(err)
	}
	if out.State == session.Completed {
		summary := sess.Summary()
		log.Info("session completed: id=%s, reviewed=%d, correct=%d", id, summary.TotalReviewed, summary.CorrectCount)
		if err := s.progress.RecordStudySession(ctx, summary); err != nil {
			log.Warn("failed to record study session %s: %v", id, err)
		}
	}
	return out, sess, nil
}

// Abandon ends a session early. Cards already scored stay saved and count
// towards today's activity.
func (s *studyService) Abandon(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	live, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return errors.NewNotFoundError("session", id)
	}

	if live.sess.State() != session.Completed {
		if err := s.progress.RecordStudySession(ctx, live.sess.Summary()); err != nil {
			log.Warn("failed to record abandoned session %s: %v", id, err)
		}
	}
	log.Info("session closed: id=%s", id)
	return nil
}

func (s *studyService) Sweep(ctx context.Context) int {
	log := logger.FromContext(ctx)
	if s.cfg.TTL <= 0 {
		return 0
	}
	cutoff := s.clock().Add(-s.cfg.TTL)

	s.mu.Lock()
	var expired []string
	for id, live := range s.sessions {
		if live.lastAccess.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		log.Info("expired %d idle sessions", len(expired))
	}
	return len(expired)
}

func (s *studyService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

func sessionError(err error) error {
	switch {
	case stderrors.Is(err, flashcard.ErrInvalidScore):
		return errors.NewValidationError("score", "must be between 1 and 5")
	case stderrors.Is(err, session.ErrInvalidTransition):
		return errors.NewConflictError("reveal the answer before scoring", err)
	case stderrors.Is(err, session.ErrSessionCompleted):
		return errors.NewConflictError("session already completed", err)
	default:
		return errors.NewInternalError(err)
	}
}
