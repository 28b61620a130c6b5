package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lingoflash/internal/errors"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(securityHeadersMiddleware)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewNotFoundError("route", r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handleError(w, r, errors.NewMethodNotAllowedError(r.Method))
	})

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/words", func(r chi.Router) {
		r.Get("/", s.handleListWords)
		r.Post("/", s.handleSaveWord)
		r.Get("/{id}", s.handleGetWord)
		r.Delete("/{id}", s.handleDeleteWord)
		r.Get("/{id}/history", s.handleWordHistory)
		r.Get("/{id}/preview", s.handleWordPreview)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/reveal", s.handleReveal)
		r.Post("/{id}/score", s.handleScore)
		r.Delete("/{id}", s.handleAbandonSession)
	})

	r.Route("/progress", func(r chi.Router) {
		r.Get("/", s.handleProgress)
		r.Get("/stats", s.handleStudyStats)
		r.Get("/activity", s.handleDailyActivity)
	})
	return r
}
