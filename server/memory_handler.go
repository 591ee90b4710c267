package server

import (
	"net/http"
	"time"

	"github.com/teranos/accelbridge/bridge"
)

// handleMemory serves the memory endpoint:
//
//	GET             current snapshot (self-throttled)
//	POST            optimize at {level, emergency}
//	PUT / DELETE    force a collection pass ({type:"gc"})
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.memorySnapshot(w, r)
	case http.MethodPost:
		s.memoryOptimize(w, r)
	case http.MethodPut, http.MethodDelete:
		s.memoryForceGC(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// memorySnapshot returns a fresh measurement, or the prior one with a
// time-remaining hint when queried again inside the throttle window.
func (s *Server) memorySnapshot(w http.ResponseWriter, r *http.Request) {
	s.throttleMu.Lock()
	allowed := s.throttle.Allow()
	if !allowed && s.lastMemory != nil {
		snap := *s.lastMemory
		remaining := s.throttleInterval - time.Since(s.lastMemoryAt)
		s.throttleMu.Unlock()

		if remaining < 0 {
			remaining = 0
		}
		writeSuccess(w, envelope{
			"memory":            snap,
			"cached":            true,
			"time_remaining_ms": remaining.Milliseconds(),
		})
		return
	}
	s.throttleMu.Unlock()

	snap := s.facade.GetMemoryInfo(r.Context())

	s.throttleMu.Lock()
	s.lastMemory = &snap
	s.lastMemoryAt = time.Now()
	s.throttleMu.Unlock()

	writeSuccess(w, envelope{
		"memory": snap,
		"cached": false,
	})
}

type optimizeRequest struct {
	// Level is optional; a missing field defaults to medium, out-of-range
	// values clamp rather than fail.
	Level     *int `json:"level"`
	Emergency bool `json:"emergency"`
}

func (s *Server) memoryOptimize(w http.ResponseWriter, r *http.Request) {
	var req optimizeRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	level := bridge.LevelMedium
	if req.Level != nil {
		level = bridge.ClampLevel(*req.Level)
	}

	outcome := s.facade.OptimizeMemory(r.Context(), level, req.Emergency)
	writeSuccess(w, envelope{"optimization": outcome})
}

type gcRequest struct {
	Type string `json:"type"`
}

func (s *Server) memoryForceGC(w http.ResponseWriter, r *http.Request) {
	var req gcRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if req.Type != "gc" {
		writeError(w, http.StatusBadRequest, "unsupported operation type, expected \"gc\"")
		return
	}

	outcome := s.facade.ForceGarbageCollection(r.Context())
	writeSuccess(w, envelope{"optimization": outcome})
}
