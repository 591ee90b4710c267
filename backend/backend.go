// Package backend discovers and loads the native acceleration backend, or
// selects the pure-software fallback when no native module is usable.
//
// The native backend is a WebAssembly module executed through wazero. All
// other layers depend only on the Backend interface; whether it is backed by
// WASM or by in-process introspection is invisible to them.
package backend

import (
	"context"

	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/errors"
)

// Kind identifies which implementation is serving requests.
type Kind string

const (
	KindNative   Kind = "native"
	KindFallback Kind = "fallback"
)

// Error taxonomy sentinels. Attach with errors.Mark, check with errors.Is.
var (
	// ErrBackendLoad marks filesystem/load/init failures. Always recovered
	// by advancing to the next candidate or the fallback.
	ErrBackendLoad = errors.New("backend load failure")

	// ErrBackendOperation marks a loaded backend's call failing. Caught per
	// call; the backend stays loaded.
	ErrBackendOperation = errors.New("backend operation failure")

	// ErrSerialization marks malformed backend output. Treated exactly like
	// an operation failure by callers.
	ErrSerialization = errors.New("backend serialization failure")
)

// Backend is the capability set served by either implementation.
//
// Implementations may return errors; totality (never surfacing an error to
// the public API) is the facade's contract, not the backend's. The fallback
// nonetheless avoids returning errors wherever a degraded value exists.
type Backend interface {
	// Kind reports which implementation this is.
	Kind() Kind

	// Version reports the backend's own version string ("" if unknown).
	Version() string

	// MemoryInfo returns a point-in-time memory measurement.
	MemoryInfo(ctx context.Context) (bridge.MemorySnapshot, error)

	// Optimize performs a reclaim pass at the given backend-protocol level.
	// It returns the backend's own estimate of bytes freed (0 if it cannot
	// tell); callers derive the authoritative figure from snapshots.
	Optimize(ctx context.Context, level bridge.BackendLevel, emergency bool) (uint64, error)

	// ForceGC requests an explicit collection pass.
	ForceGC(ctx context.Context) (uint64, error)

	// GPUInfo describes the backend's GPU capability.
	GPUInfo(ctx context.Context) (bridge.GPUCapability, error)

	// SetGPUAcceleration toggles GPU state. Returns false without error when
	// the backend has no GPU capability to toggle.
	SetGPUAcceleration(ctx context.Context, enable bool) (bool, error)

	// Compute dispatches an opaque computation task.
	Compute(ctx context.Context, req bridge.ComputationRequest) (bridge.ComputationResult, error)

	// Close releases backend resources.
	Close() error
}
