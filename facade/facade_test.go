package facade

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teranos/accelbridge/backend"
	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/errors"
)

// stubBackend is a scriptable Backend for facade contract tests.
type stubBackend struct {
	memSnap       bridge.MemorySnapshot
	memErr        error
	optimizeErr   error
	panicOps      map[string]bool
	gpuCap        bridge.GPUCapability
	gpuErr        error
	gpuCalls      atomic.Int64
	toggleOK      bool
	toggleErr     error
	computeRes    bridge.ComputationResult
	computeErr    error
	lastLevel     bridge.BackendLevel
	lastEmergency bool
}

func (s *stubBackend) Kind() backend.Kind { return backend.KindNative }
func (s *stubBackend) Version() string    { return "1.0.0" }

func (s *stubBackend) MemoryInfo(ctx context.Context) (bridge.MemorySnapshot, error) {
	if s.panicOps["memory_info"] {
		panic("backend exploded")
	}
	return s.memSnap, s.memErr
}

func (s *stubBackend) Optimize(ctx context.Context, level bridge.BackendLevel, emergency bool) (uint64, error) {
	if s.panicOps["optimize"] {
		panic("backend exploded")
	}
	s.lastLevel = level
	s.lastEmergency = emergency
	return 0, s.optimizeErr
}

func (s *stubBackend) ForceGC(ctx context.Context) (uint64, error) {
	return 0, s.optimizeErr
}

func (s *stubBackend) GPUInfo(ctx context.Context) (bridge.GPUCapability, error) {
	s.gpuCalls.Add(1)
	return s.gpuCap, s.gpuErr
}

func (s *stubBackend) SetGPUAcceleration(ctx context.Context, enable bool) (bool, error) {
	return s.toggleOK, s.toggleErr
}

func (s *stubBackend) Compute(ctx context.Context, req bridge.ComputationRequest) (bridge.ComputationResult, error) {
	return s.computeRes, s.computeErr
}

func (s *stubBackend) Close() error { return nil }

func newTestFacade(s *stubBackend, gpuTTL time.Duration) *Facade {
	return New(s, backend.NewState(), gpuTTL, DefaultStatusTTL, zap.NewNop().Sugar())
}

func healthySnap(used uint64) bridge.MemorySnapshot {
	return bridge.MemorySnapshot{
		HeapUsed:    used,
		HeapTotal:   used * 2,
		HeapLimit:   used * 4,
		PercentUsed: 25,
		Timestamp:   time.Now(),
	}
}

func TestGetMemoryInfoTotalOnError(t *testing.T) {
	s := &stubBackend{memErr: errors.New("wire torn")}
	f := newTestFacade(s, 0)

	snap := f.GetMemoryInfo(context.Background())
	assert.Contains(t, snap.Error, "wire torn")
	assert.Zero(t, snap.HeapUsed)
}

func TestGetMemoryInfoTotalOnPanic(t *testing.T) {
	s := &stubBackend{panicOps: map[string]bool{"memory_info": true}}
	f := newTestFacade(s, 0)

	assert.NotPanics(t, func() {
		snap := f.GetMemoryInfo(context.Background())
		assert.Contains(t, snap.Error, "panic")
	})
}

func TestOptimizeMemoryClampsLevel(t *testing.T) {
	s := &stubBackend{memSnap: healthySnap(1 << 20)}
	f := newTestFacade(s, 0)

	for _, raw := range []int{-1, 99} {
		outcome := f.OptimizeMemory(context.Background(), bridge.Level(raw), false)
		assert.True(t, outcome.Success, "raw level %d", raw)
		assert.Equal(t, bridge.LevelMedium, outcome.Level, "raw level %d", raw)
		assert.Equal(t, bridge.BackendStandard, s.lastLevel, "raw level %d", raw)
	}
}

func TestOptimizeMemoryFailureIsOutcomeNotError(t *testing.T) {
	s := &stubBackend{
		memSnap:     healthySnap(1 << 20),
		optimizeErr: errors.New("reclaim refused"),
	}
	f := newTestFacade(s, 0)

	outcome := f.OptimizeMemory(context.Background(), bridge.LevelHigh, false)
	assert.False(t, outcome.Success)
	assert.Contains(t, outcome.Error, "reclaim refused")
	// Before/after snapshots are still populated
	assert.NotZero(t, outcome.Before.HeapUsed)
	assert.NotZero(t, outcome.After.HeapUsed)
}

func TestOptimizeMemoryFreedNeverNegative(t *testing.T) {
	// Heap grows during the pass: freed must clamp to >= 0
	s := &stubBackend{memSnap: healthySnap(1 << 20)}
	f := newTestFacade(s, 0)

	outcome := f.OptimizeMemory(context.Background(), bridge.LevelLow, false)
	assert.True(t, outcome.Success)
	assert.GreaterOrEqual(t, outcome.FreedMemory, uint64(0))
	assert.Equal(t, bridge.LevelLow, outcome.Level)
}

func TestForceGarbageCollection(t *testing.T) {
	s := &stubBackend{memSnap: healthySnap(1 << 20)}
	f := newTestFacade(s, 0)

	outcome := f.ForceGarbageCollection(context.Background())
	assert.True(t, outcome.Success)
	assert.Equal(t, bridge.LevelLow, outcome.Level)
	assert.False(t, outcome.Emergency)
}

func TestGetGPUInfoCaching(t *testing.T) {
	s := &stubBackend{gpuCap: bridge.GPUCapability{
		Vendor:      "acme",
		Renderer:    "turbo-9000",
		Accelerated: true,
		Available:   true,
		Backend:     "native-webgpu",
		Timestamp:   time.Now(),
	}}
	f := newTestFacade(s, 100*time.Millisecond)
	ctx := context.Background()

	first := f.GetGPUInfo(ctx)
	second := f.GetGPUInfo(ctx)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), s.gpuCalls.Load(), "second read inside TTL must not hit the backend")

	time.Sleep(120 * time.Millisecond)
	f.GetGPUInfo(ctx)
	assert.Equal(t, int64(2), s.gpuCalls.Load(), "read after TTL expiry must refetch")
}

func TestGetGPUInfoSynthesizesOnFailure(t *testing.T) {
	s := &stubBackend{gpuErr: errors.New("probe failed")}
	f := newTestFacade(s, 0)

	cap := f.GetGPUInfo(context.Background())
	assert.False(t, cap.Available)
	assert.Equal(t, "software", cap.Backend)
}

func TestSetGPUAccelerationInvalidatesCache(t *testing.T) {
	s := &stubBackend{
		toggleOK: true,
		gpuCap:   bridge.GPUCapability{Available: true, Vendor: "acme", Timestamp: time.Now()},
	}
	f := newTestFacade(s, time.Hour)
	ctx := context.Background()

	f.GetGPUInfo(ctx)
	require.Equal(t, int64(1), s.gpuCalls.Load())

	require.True(t, f.SetGPUAcceleration(ctx, true))

	f.GetGPUInfo(ctx)
	assert.Equal(t, int64(2), s.gpuCalls.Load(), "toggle must drop the cached entry")
}

func TestSetGPUAccelerationUnsupportedIsFalseNotError(t *testing.T) {
	s := &stubBackend{toggleOK: false}
	f := newTestFacade(s, 0)

	assert.False(t, f.SetGPUAcceleration(context.Background(), true))
}

func TestPerformGPUComputation(t *testing.T) {
	s := &stubBackend{computeRes: bridge.ComputationResult{
		Success: true,
		Result:  json.RawMessage(`{"product":[1,2,3]}`),
	}}
	f := newTestFacade(s, 0)

	res := f.PerformGPUComputation(context.Background(), "matrix_multiply", json.RawMessage(`{"rows":2}`))
	assert.True(t, res.Success)
	assert.Equal(t, "matrix_multiply", res.TaskType)
	assert.NotEmpty(t, res.ID)
	assert.JSONEq(t, `{"product":[1,2,3]}`, string(res.Result))
}

func TestPerformGPUComputationFailureHasReason(t *testing.T) {
	s := &stubBackend{computeErr: errors.New("kernel launch failed")}
	f := newTestFacade(s, 0)

	res := f.PerformGPUComputation(context.Background(), "fft", nil)
	assert.False(t, res.Success)
	assert.Contains(t, res.Reason, "kernel launch failed")
}

func TestMetricsAccounting(t *testing.T) {
	s := &stubBackend{memSnap: healthySnap(1 << 20)}
	f := newTestFacade(s, 0)
	ctx := context.Background()

	const successes = 3
	for i := 0; i < successes; i++ {
		f.GetMemoryInfo(ctx)
	}

	s.memErr = errors.New("down")
	const failures = 2
	for i := 0; i < failures; i++ {
		f.GetMemoryInfo(ctx)
	}

	m := f.Metrics().Snapshot()
	assert.Equal(t, uint64(successes+failures), m.Calls)
	assert.Equal(t, uint64(failures), m.Errors)
	assert.Contains(t, m.LastError, "down")
	assert.False(t, m.LastCall.IsZero())
}

func TestStatusReflectsFallback(t *testing.T) {
	state := backend.NewState()
	locator := backend.NewLocator(nil, "", state, zap.NewNop().Sugar())
	f := New(locator.Backend(), state, 0, time.Nanosecond, zap.NewNop().Sugar())

	status := f.Status()
	assert.False(t, status.Available)
	assert.True(t, status.UsingFallback)
	assert.Equal(t, "fallback", status.BackendKind)
}

func TestEndToEndFallbackOptimize(t *testing.T) {
	// No backend on disk: fallback selected, a low-level optimize succeeds
	// with freed >= 0, and a subsequent snapshot stays consistent.
	state := backend.NewState()
	locator := backend.NewLocator([]string{"/nonexistent/accel.wasm"}, "", state, zap.NewNop().Sugar())
	f := New(locator.Backend(), state, 0, 0, zap.NewNop().Sugar())
	ctx := context.Background()

	outcome := f.OptimizeMemory(ctx, bridge.LevelLow, false)
	assert.True(t, outcome.Success)
	assert.Equal(t, bridge.LevelLow, outcome.Level)
	assert.GreaterOrEqual(t, outcome.FreedMemory, uint64(0))

	snap := f.GetMemoryInfo(ctx)
	assert.Empty(t, snap.Error)
	assert.GreaterOrEqual(t, snap.PercentUsed, 0.0)
	assert.LessOrEqual(t, snap.PercentUsed, 100.0)
	assert.LessOrEqual(t, snap.HeapUsed, outcome.Before.HeapUsed+outcome.Before.HeapTotal,
		"post-optimization heap should not blow past the pre-optimization envelope")
}
