package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/errors"
	"github.com/vytor/lingoflash/internal/flashcard"
	"github.com/vytor/lingoflash/internal/logger"
	"github.com/vytor/lingoflash/internal/models"
	"github.com/vytor/lingoflash/internal/services"
	"github.com/vytor/lingoflash/internal/session"
)

type startSessionRequest struct {
	Category   string `json:"category" validate:"required,max=100"`
	SourceLang string `json:"source_lang" validate:"omitempty,min=2,max=8"`
	TargetLang string `json:"target_lang" validate:"omitempty,min=2,max=8"`
	Limit      int    `json:"limit" validate:"gte=0,lte=500"`
}

// scoreLabel accepts either a JSON number or a label such as "good".
type scoreLabel string

func (l *scoreLabel) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = scoreLabel(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*l = scoreLabel(n.String())
	return nil
}

type scoreRequest struct {
	Score scoreLabel `json:"score" validate:"required"`
}

// cardView hides the answer until the card is revealed.
type cardView struct {
	ID           int64              `json:"id"`
	Term         string             `json:"term"`
	Definition   string             `json:"definition,omitempty"`
	Example      string             `json:"example,omitempty"`
	Phonetic     string             `json:"phonetic,omitempty"`
	PartOfSpeech string             `json:"part_of_speech,omitempty"`
	Review       models.ReviewState `json:"review"`
}

type sessionView struct {
	ID             string        `json:"id"`
	Category       string        `json:"category"`
	State          session.State `json:"state"`
	Position       int           `json:"position"`
	Total          int           `json:"total"`
	Card           *cardView     `json:"card,omitempty"`
	Stats          session.Stats `json:"stats"`
	StartedAt      time.Time     `json:"started_at"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
}

type scoreResponse struct {
	Word       models.Word        `json:"word"`
	Previous   models.ReviewState `json:"previous"`
	Score      flashcard.Score    `json:"score"`
	Correct    bool               `json:"correct"`
	Feedback   string             `json:"feedback"`
	ReviewedAt time.Time          `json:"reviewed_at"`
	SaveError  string             `json:"save_error,omitempty"`
	Session    sessionView        `json:"session"`
}

func newSessionView(sess *session.Session) sessionView {
	state := sess.State()
	position, total := sess.Position()
	v := sessionView{
		ID:             sess.ID(),
		Category:       sess.Category(),
		State:          state,
		Position:       position,
		Total:          total,
		Stats:          sess.Stats(),
		StartedAt:      sess.StartedAt(),
		ElapsedSeconds: int64(sess.Elapsed() / time.Second),
	}
	if word, ok := sess.Current(); ok {
		card := &cardView{
			ID:           word.ID,
			Term:         word.Term,
			Phonetic:     word.Phonetic,
			PartOfSpeech: word.PartOfSpeech,
			Review:       word.Review,
		}
		if state == session.Revealed {
			card.Definition = word.Definition
			card.Example = word.Example
		}
		v.Card = card
	}
	return v
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req startSessionRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	sess, err := s.StudyService.StartSession(r.Context(), services.StartSessionRequest{
		Category:   req.Category,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		Limit:      req.Limit,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Debug("session started: id=%s", sess.ID())
	writeJSON(w, r, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	sess, err := s.StudyService.Reveal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req scoreRequest
	if err := s.decodeRequest(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	score, err := flashcard.ParseScore(string(req.Score))
	if err != nil {
		handleError(w, r, errors.NewValidationError("score", "must be again, good, easy or 1-5"))
		return
	}

	out, sess, err := s.StudyService.Score(r.Context(), id, score)
	if err != nil {
		handleError(w, r, err)
		return
	}

	resp := scoreResponse{
		Word:       out.Word,
		Previous:   out.Previous,
		Score:      out.Score,
		Correct:    out.Correct,
		Feedback:   out.Feedback,
		ReviewedAt: out.ReviewedAt,
		Session:    newSessionView(sess),
	}
	if out.SaveErr != nil {
		resp.SaveError = out.SaveErr.Error()
	}
	log.Debug("card scored: session=%s, score=%s", id, score)
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	if err := s.StudyService.Abandon(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
