package services

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/repository"
)

// PreviewOption is what one answer button would schedule.
type PreviewOption struct {
	Score    flashcard.Score    `json:"score"`
	Label    string             `json:"label"`
	Review   models.ReviewState `json:"review"`
	Feedback string             `json:"feedback"`
}

// VocabularyService handles the word list
type VocabularyService interface {
	SaveWord(ctx context.Context, word models.Word) (*models.Word, error)
	ListWords(ctx context.Context, filter models.WordFilter) ([]models.Word, int, error)
	GetWord(ctx context.Context, id int64) (*models.Word, error)
	DeleteWord(ctx context.Context, id int64) error
	ReviewHistory(ctx context.Context, id int64, limit int) ([]models.ReviewHistory, error)
	Preview(ctx context.Context, id int64) ([]PreviewOption, error)
}

type vocabularyService struct {
	wordRepo  repository.WordRepository
	scheduler *flashcard.Scheduler
}

// NewVocabularyService creates a new VocabularyService
func NewVocabularyService(wordRepo repository.WordRepository, scheduler *flashcard.Scheduler) VocabularyService {
	if scheduler == nil {
		scheduler = flashcard.NewScheduler(nil)
	}
	return &vocabularyService{wordRepo: wordRepo, scheduler: scheduler}
}

func (s *vocabularyService) SaveWord(ctx context.Context, w models.Word) (*models.Word, error) {
	log := logger.FromContext(ctx)
	w.Term = strings.TrimSpace(w.Term)
	w.Definition = strings.TrimSpace(w.Definition)
	log.Debug("saving word: term=%s, pair=%s-%s", w.Term, w.SourceLang, w.TargetLang)

	if w.Term == "" {
		return nil, errors.NewValidationError("term", "cannot be empty")
	}
	if w.Definition == "" {
		return nil, errors.NewValidationError("definition", "cannot be empty")
	}
	if w.SourceLang == "" || w.TargetLang == "" {
		return nil, errors.NewValidationError("language pair", "source and target are required")
	}
	w.Review = w.Review.WithDefaults()

	id, err := s.wordRepo.Upsert(ctx, w)
	if err != nil {
		log.Error("failed to save word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetWord(ctx, id)
}

func (s *vocabularyService) ListWords(ctx context.Context, filter models.WordFilter) ([]models.Word, int, error) {
	log := logger.FromContext(ctx)

	words, err := s.wordRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.wordRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count words: %v", err)
		return nil, 0, errors.NewInternalError(err)
	}
	if words == nil {
		words = []models.Word{}
	}
	return words, total, nil
}

func (s *vocabularyService) GetWord(ctx context.Context, id int64) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting word: id=%d", id)

	w, err := s.wordRepo.Get(ctx, id)
	if err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("word", id)
		}
		log.Error("failed to get word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return w, nil
}

func (s *vocabularyService) DeleteWord(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting word: id=%d", id)

	if err := s.wordRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("word", id)
		}
		log.Error("failed to delete word: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("word deleted: id=%d", id)
	return nil
}

func (s *vocabularyService) ReviewHistory(ctx context.Context, id int64, limit int) ([]models.ReviewHistory, error) {
	if _, err := s.GetWord(ctx, id); err != nil {
		return nil, err
	}
	history, err := s.wordRepo.ReviewHistory(ctx, id, limit)
	if err != nil {
		logger.FromContext(ctx).Error("failed to load review history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if history == nil {
		history = []models.ReviewHistory{}
	}
	return history, nil
}

// Preview returns the state each canonical score would schedule for the
// word, without saving anything.
func (s *vocabularyService) Preview(ctx context.Context, id int64) ([]PreviewOption, error) {
	w, err := s.GetWord(ctx, id)
	if err != nil {
		return nil, err
	}

	next := s.scheduler.Preview(&w.Review)
	options := make([]PreviewOption, 0, len(flashcard.CanonicalScores))
	for _, score := range flashcard.CanonicalScores {
		state := next[score]
		options = append(options, PreviewOption{
			Score:    score,
			Label:    score.String(),
			Review:   state,
			Feedback: flashcard.Feedback(score, state),
		})
	}
	return options, nil
}
