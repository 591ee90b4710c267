package server

import (
	"net/http"
)

// handleStatus serves GET /status: backend selection, fallback flag, last
// error, and the aggregated call metrics.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodGet) {
		return
	}

	status := s.facade.Status()
	writeSuccess(w, envelope{
		"available": status.Available,
		"fallback":  status.UsingFallback,
		"status":    status,
	})
}
