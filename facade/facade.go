// Package facade exposes the single stable operation surface of the bridge.
//
// Every public operation is total: backend errors and panics are converted
// to failed-outcome values at exactly one point per operation, never raised
// to the caller. The facade also owns the TTL caches over expensive reads
// and the process-wide call metrics.
package facade

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/accelbridge/backend"
	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/errors"
)

// Default cache TTLs per category.
const (
	DefaultGPUInfoTTL = 60 * time.Second
	DefaultStatusTTL  = 10 * time.Second
)

// Facade dispatches to whichever backend the locator selected.
type Facade struct {
	backend backend.Backend
	state   *backend.State
	metrics *Recorder
	logger  *zap.SugaredLogger

	gpuCache    *cacheSlot[bridge.GPUCapability]
	statusCache *cacheSlot[bridge.ModuleStatus]
}

// New wires a facade over the selected backend. gpuTTL and statusTTL bound
// the freshness of the corresponding cached reads; zero values select the
// defaults.
func New(b backend.Backend, state *backend.State, gpuTTL, statusTTL time.Duration, logger *zap.SugaredLogger) *Facade {
	if gpuTTL <= 0 {
		gpuTTL = DefaultGPUInfoTTL
	}
	if statusTTL <= 0 {
		statusTTL = DefaultStatusTTL
	}
	return &Facade{
		backend:     b,
		state:       state,
		metrics:     NewRecorder(),
		logger:      logger,
		gpuCache:    newCacheSlot[bridge.GPUCapability](gpuTTL),
		statusCache: newCacheSlot[bridge.ModuleStatus](statusTTL),
	}
}

// Backend reports which implementation is serving requests.
func (f *Facade) Backend() backend.Backend { return f.backend }

// Metrics returns the facade's call recorder.
func (f *Facade) Metrics() *Recorder { return f.metrics }

// SetCacheTTLs adjusts cache freshness bounds (config hot-reload).
func (f *Facade) SetCacheTTLs(gpuTTL, statusTTL time.Duration) {
	if gpuTTL > 0 {
		f.gpuCache.setTTL(gpuTTL)
	}
	if statusTTL > 0 {
		f.statusCache.setTTL(statusTTL)
	}
}

// finish records metrics and the bridge state's last error for one
// dispatched operation.
func (f *Facade) finish(op string, start time.Time, err error) {
	f.metrics.Record(time.Since(start), err)
	if err != nil {
		f.state.RecordError(err)
		f.logger.Warnw("Backend operation failed",
			"op", op,
			"error", err)
	}
}

// guard converts a backend panic into an error so no operation can escape
// the total contract.
func guard(op string, err *error) {
	if r := recover(); r != nil {
		*err = errors.Newf("backend panic in %s: %v", op, r)
	}
}

// GetMemoryInfo returns a fresh memory snapshot. Backend failure yields an
// error-flagged zero snapshot, never an error.
func (f *Facade) GetMemoryInfo(ctx context.Context) bridge.MemorySnapshot {
	start := time.Now()
	snap, err := f.memoryInfo(ctx)
	f.finish("memory_info", start, err)
	if err != nil {
		return bridge.ZeroSnapshot(err)
	}
	return snap
}

func (f *Facade) memoryInfo(ctx context.Context) (snap bridge.MemorySnapshot, err error) {
	defer guard("memory_info", &err)
	return f.backend.MemoryInfo(ctx)
}

// OptimizeMemory runs a reclaim pass. The level is clamped before dispatch;
// before/after snapshots are the facade's own, taken around the backend
// call, so a single caller always sees an internally consistent pair.
func (f *Facade) OptimizeMemory(ctx context.Context, level bridge.Level, emergency bool) bridge.OptimizationOutcome {
	level = bridge.ClampLevel(int(level))
	start := time.Now()

	before, _ := f.memoryInfo(ctx)
	reported, err := f.optimize(ctx, level, emergency)
	after, _ := f.memoryInfo(ctx)

	elapsed := time.Since(start)
	f.finish("optimize", start, err)

	outcome := bridge.OptimizationOutcome{
		Level:     level,
		Emergency: emergency,
		Before:    before,
		After:     after,
		Duration:  elapsed,
	}
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	outcome.FreedMemory = freedBytes(before, after, reported)
	return outcome
}

func (f *Facade) optimize(ctx context.Context, level bridge.Level, emergency bool) (freed uint64, err error) {
	defer guard("optimize", &err)
	return f.backend.Optimize(ctx, bridge.ToBackendLevel(level), emergency)
}

// freedBytes clamps the reclaim figure to >= 0, preferring the snapshot
// delta over the backend's own estimate when both exist.
func freedBytes(before, after bridge.MemorySnapshot, reported uint64) uint64 {
	if before.HeapUsed > after.HeapUsed {
		return before.HeapUsed - after.HeapUsed
	}
	return reported
}

// ForceGarbageCollection is a fixed minimal-level reclaim pass with the same
// failure contract as OptimizeMemory.
func (f *Facade) ForceGarbageCollection(ctx context.Context) bridge.OptimizationOutcome {
	start := time.Now()

	before, _ := f.memoryInfo(ctx)
	reported, err := f.forceGC(ctx)
	after, _ := f.memoryInfo(ctx)

	elapsed := time.Since(start)
	f.finish("force_gc", start, err)

	outcome := bridge.OptimizationOutcome{
		Level:    bridge.LevelLow,
		Before:   before,
		After:    after,
		Duration: elapsed,
	}
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}

	outcome.Success = true
	outcome.FreedMemory = freedBytes(before, after, reported)
	return outcome
}

func (f *Facade) forceGC(ctx context.Context) (freed uint64, err error) {
	defer guard("force_gc", &err)
	return f.backend.ForceGC(ctx)
}

// GetGPUInfo returns the backend's GPU capability, memoized behind the GPU
// cache TTL. Any failure synthesizes a conservative software-only answer.
func (f *Facade) GetGPUInfo(ctx context.Context) bridge.GPUCapability {
	start := time.Now()
	info, _, err := f.gpuCache.get(func() (bridge.GPUCapability, error) {
		return f.gpuInfo(ctx)
	})
	f.finish("gpu_info", start, err)
	if err != nil {
		return bridge.SoftwareOnlyGPU()
	}
	return info
}

func (f *Facade) gpuInfo(ctx context.Context) (info bridge.GPUCapability, err error) {
	defer guard("gpu_info", &err)
	return f.backend.GPUInfo(ctx)
}

// SetGPUAcceleration toggles backend GPU state. It returns false, not an
// error, when the backend has no GPU capability. A successful toggle
// eagerly invalidates the GPU-info cache entry.
func (f *Facade) SetGPUAcceleration(ctx context.Context, enable bool) bool {
	start := time.Now()
	ok, err := f.setGPUAcceleration(ctx, enable)
	f.finish("gpu_toggle", start, err)
	if err != nil {
		return false
	}
	if ok {
		f.gpuCache.invalidate()
	}
	return ok
}

func (f *Facade) setGPUAcceleration(ctx context.Context, enable bool) (ok bool, err error) {
	defer guard("gpu_toggle", &err)
	return f.backend.SetGPUAcceleration(ctx, enable)
}

// PerformGPUComputation dispatches an opaque task to the backend. Backend
// absence or failure yields a failed result with a reason, never an error.
func (f *Facade) PerformGPUComputation(ctx context.Context, taskType string, payload json.RawMessage) bridge.ComputationResult {
	start := time.Now()
	res, err := f.compute(ctx, bridge.ComputationRequest{
		TaskType: taskType,
		Payload:  payload,
	})
	elapsed := time.Since(start)
	f.finish("gpu_compute", start, err)

	res.ID = uuid.NewString()
	res.TaskType = taskType
	res.Duration = elapsed
	if err != nil {
		res.Success = false
		res.Reason = err.Error()
	}
	return res
}

func (f *Facade) compute(ctx context.Context, req bridge.ComputationRequest) (res bridge.ComputationResult, err error) {
	defer guard("gpu_compute", &err)
	return f.backend.Compute(ctx, req)
}

// Status reports the bridge's module status, memoized behind the status
// cache TTL.
func (f *Facade) Status() bridge.ModuleStatus {
	status, _, _ := f.statusCache.get(func() (bridge.ModuleStatus, error) {
		return f.buildStatus(), nil
	})
	return status
}

func (f *Facade) buildStatus() bridge.ModuleStatus {
	kind, version, loadedFrom, lastError, available := f.state.Snapshot()
	return bridge.ModuleStatus{
		Available:      available,
		UsingFallback:  kind == backend.KindFallback,
		BackendKind:    string(kind),
		BackendVersion: version,
		LoadedFrom:     loadedFrom,
		LastError:      lastError,
		Metrics:        f.metrics.Snapshot(),
	}
}
