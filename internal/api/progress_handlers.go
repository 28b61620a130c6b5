package api

import "net/http"

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.ProgressService.UserProgress(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, progress)
}

func (s *Server) handleStudyStats(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7, 1, 365)
	if err != nil {
		handleError(w, r, err)
		return
	}
	stats, err := s.ProgressService.StudyStats(r.Context(), days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleDailyActivity(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r, "days", 7, 1, 365)
	if err != nil {
		handleError(w, r, err)
		return
	}
	activity, err := s.ProgressService.DailyActivity(r.Context(), days)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, activity)
}
