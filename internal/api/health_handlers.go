package api

import (
	"net/http"

	"github.com/vytor/lingoflash/internal/errors"
)

// handleHealth returns a liveness probe - always returns 200 OK.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns 200 when the database answers, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.Health != nil {
		if err := s.Health.Healthy(r.Context()); err != nil {
			handleError(w, r, errors.NewUnavailableError("database unavailable", err))
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
