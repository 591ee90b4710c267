package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// envelope is the uniform response shape: success flag, payload fields, and
// a server timestamp. Expected degradations (fallback backend, no GPU) are
// successful envelopes with explicit availability flags, not errors.
type envelope map[string]interface{}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeSuccess writes a success envelope, stamping success and timestamp.
func writeSuccess(w http.ResponseWriter, payload envelope) {
	if payload == nil {
		payload = envelope{}
	}
	payload["success"] = true
	payload["timestamp"] = time.Now().UnixMilli()
	writeJSON(w, http.StatusOK, payload)
}

// writeError writes a failure envelope. Only malformed caller input reaches
// this path; backend degradation never does.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{
		"success":   false,
		"error":     message,
		"timestamp": time.Now().UnixMilli(),
	})
}

// readJSON reads and decodes a JSON request body
func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %v", err))
		return err
	}
	return nil
}

// requireMethods checks if the request method matches one of the expected methods
func requireMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, method := range methods {
		if r.Method == method {
			return true
		}
	}
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}
