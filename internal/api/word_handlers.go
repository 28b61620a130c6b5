package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
)

type saveWordRequest struct {
	Term         string `json:"term" validate:"required,max=200"`
	Definition   string `json:"definition" validate:"required,max=2000"`
	Example      string `json:"example" validate:"max=2000"`
	Phonetic     string `json:"phonetic" validate:"max=200"`
	PartOfSpeech string `json:"part_of_speech" validate:"max=40"`
	Level        string `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	SourceLang   string `json:"source_lang" validate:"required,min=2,max=8"`
	TargetLang   string `json:"target_lang" validate:"required,min=2,max=8,nefield=SourceLang"`
	Category     string `json:"category" validate:"max=100"`
}

type wordListResponse struct {
	Words []models.Word `json:"words"`
	Total int           `json:"total"`
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.WordFilter{
		SourceLang: q.Get("source"),
		TargetLang: q.Get("target"),
		Category:   q.Get("category"),
	}
	if raw := q.Get("due"); raw != "" {
		due, err := strconv.ParseBool(raw)
		if err != nil {
			handleError(w, r, errors.NewValidationError("due", "must be a boolean"))
			return
		}
		if due {
			now := time.Now()
			filter.DueAt = &now
		}
	}

	var err error
	if filter.Limit, err = queryInt(r, "limit", 100, 1, 1000); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0, 0, 1<<30); err != nil {
		handleError(w, r, err)
		return
	}

	words, total, err := s.VocabularyService.ListWords(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, wordListResponse{Words: words, Total: total})
}

func (s *Server) handleSaveWord(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req saveWordRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	word, err := s.VocabularyService.SaveWord(r.Context(), models.Word{
		Term:         req.Term,
		Definition:   req.Definition,
		Example:      req.Example,
		Phonetic:     req.Phonetic,
		PartOfSpeech: req.PartOfSpeech,
		Level:        models.Level(req.Level),
		SourceLang:   req.SourceLang,
		TargetLang:   req.TargetLang,
		Category:     req.Category,
		Review:       models.NewReviewState(),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("word saved: id=%d, term=%s", word.ID, word.Term)
	writeJSON(w, r, http.StatusCreated, word)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.VocabularyService.GetWord(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if err := s.VocabularyService.DeleteWord(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWordHistory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 50, 1, 500)
	if err != nil {
		handleError(w, r, err)
		return
	}
	history, err := s.VocabularyService.ReviewHistory(r.Context(), id, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, history)
}

func (s *Server) handleWordPreview(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	options, err := s.VocabularyService.Preview(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, options)
}
