// Package bridge defines the data model shared by every layer of the
// native capability bridge: memory snapshots, optimization levels and
// outcomes, GPU capability descriptions, and computation requests.
//
// Everything in this package is pure data plus pure functions. It has no
// knowledge of which backend (native or fallback) produced a value.
package bridge

import (
	"encoding/json"
	"time"
)

// MemorySnapshot is an immutable point-in-time memory measurement.
// A snapshot with a non-empty Error field carries zeroed measurements.
type MemorySnapshot struct {
	HeapUsed    uint64    `json:"heap_used"`
	HeapTotal   uint64    `json:"heap_total"`
	HeapLimit   uint64    `json:"heap_limit"`
	RSS         uint64    `json:"rss"`
	External    uint64    `json:"external"`
	PercentUsed float64   `json:"percent_used"`
	Timestamp   time.Time `json:"timestamp"`
	Error       string    `json:"error,omitempty"`
}

// ZeroSnapshot returns an error-flagged snapshot with zeroed measurements.
// Used when memory introspection itself fails.
func ZeroSnapshot(err error) MemorySnapshot {
	s := MemorySnapshot{Timestamp: time.Now()}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}

// OptimizationOutcome reports the result of a reclaim operation.
// FreedMemory is always >= 0; a failed backend call yields Success=false
// with Error set, never a propagated error.
type OptimizationOutcome struct {
	Success     bool           `json:"success"`
	Level       Level          `json:"level"`
	Emergency   bool           `json:"emergency"`
	Before      MemorySnapshot `json:"before"`
	After       MemorySnapshot `json:"after"`
	FreedMemory uint64         `json:"freed_memory"`
	Duration    time.Duration  `json:"duration_ms"`
	Error       string         `json:"error,omitempty"`
}

// GPUCapability describes what the active backend can offer for GPU work.
type GPUCapability struct {
	Vendor      string    `json:"vendor"`
	Renderer    string    `json:"renderer"`
	Accelerated bool      `json:"accelerated"`
	Backend     string    `json:"backend"`
	Available   bool      `json:"available"`
	Timestamp   time.Time `json:"timestamp"`
}

// SoftwareOnlyGPU returns the conservative capability synthesized when a
// backend has no GPU support or its GPU query fails.
func SoftwareOnlyGPU() GPUCapability {
	return GPUCapability{
		Vendor:      "none",
		Renderer:    "software",
		Accelerated: false,
		Backend:     "software",
		Available:   false,
		Timestamp:   time.Now(),
	}
}

// ComputationRequest carries an opaque task to the backend. Payload is
// passed through untouched; only the backend interprets it.
type ComputationRequest struct {
	TaskType string          `json:"task_type"`
	Payload  json.RawMessage `json:"payload"`
}

// ComputationResult is the backend's answer to a ComputationRequest.
// Backend absence or failure produces Success=false with Reason set.
type ComputationResult struct {
	ID       string          `json:"id"`
	TaskType string          `json:"task_type"`
	Success  bool            `json:"success"`
	Result   json.RawMessage `json:"result,omitempty"`
	Reason   string          `json:"reason,omitempty"`
	Duration time.Duration   `json:"duration_ms"`
}

// MetricsSnapshot is a read-only copy of the recorder's counters.
type MetricsSnapshot struct {
	Calls            uint64        `json:"calls"`
	Errors           uint64        `json:"errors"`
	TotalTime        time.Duration `json:"total_time_ms"`
	AvgExecutionTime time.Duration `json:"avg_execution_time_ms"`
	LastCall         time.Time     `json:"last_call"`
	LastError        string        `json:"last_error,omitempty"`
}

// ModuleStatus describes the bridge as a whole: which backend was selected,
// whether it degraded to the fallback, and the aggregated call metrics.
type ModuleStatus struct {
	Available      bool            `json:"available"`
	UsingFallback  bool            `json:"fallback"`
	BackendKind    string          `json:"backend_kind"`
	BackendVersion string          `json:"backend_version,omitempty"`
	LoadedFrom     string          `json:"loaded_from,omitempty"`
	LastError      string          `json:"last_error,omitempty"`
	Metrics        MetricsSnapshot `json:"metrics"`
}
