package server

import (
	"encoding/json"
	"net/http"
)

// handleGPU serves GET /gpu (capability) and POST /gpu (computation).
func (s *Server) handleGPU(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.gpuInfo(w, r)
	case http.MethodPost:
		s.gpuCompute(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// gpuInfo reports capability. A software-only answer is a normal success
// with available:false, not an error.
func (s *Server) gpuInfo(w http.ResponseWriter, r *http.Request) {
	info := s.facade.GetGPUInfo(r.Context())
	writeSuccess(w, envelope{
		"gpu":       info,
		"available": info.Available,
	})
}

type computeRequest struct {
	ComputationType string          `json:"computation_type"`
	Data            json.RawMessage `json:"data"`
}

func (s *Server) gpuCompute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}
	if req.ComputationType == "" {
		writeError(w, http.StatusBadRequest, "computation_type is required")
		return
	}

	res := s.facade.PerformGPUComputation(r.Context(), req.ComputationType, req.Data)
	writeSuccess(w, envelope{"computation": res})
}

type accelerationRequest struct {
	Enable bool `json:"enable"`
}

// handleGPUAcceleration serves PUT /gpu/acceleration. An unsupported toggle
// is enabled:false inside a successful envelope.
func (s *Server) handleGPUAcceleration(w http.ResponseWriter, r *http.Request) {
	if !requireMethods(w, r, http.MethodPut) {
		return
	}

	var req accelerationRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	ok := s.facade.SetGPUAcceleration(r.Context(), req.Enable)
	enabled := ok && req.Enable
	writeSuccess(w, envelope{"enabled": enabled, "supported": ok})
}
