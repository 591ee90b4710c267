package backend

import (
	"context"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/teranos/accelbridge/bridge"
)

// Fallback is the pure-software backend selected when no native module
// loads. It uses runtime introspection and explicit collection hints only,
// and never returns an error from any operation: a failed measurement
// degrades to a zeroed, error-flagged snapshot instead.
type Fallback struct {
	logger *zap.SugaredLogger
	proc   *process.Process
}

// NewFallback constructs the software backend. It never fails; an
// unresolvable own-process handle only disables RSS measurement.
func NewFallback(logger *zap.SugaredLogger) *Fallback {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warnw("Own-process handle unavailable, RSS will read zero",
			"error", err)
		proc = nil
	}
	return &Fallback{logger: logger, proc: proc}
}

func (f *Fallback) Kind() Kind      { return KindFallback }
func (f *Fallback) Version() string { return runtime.Version() }

// MemoryInfo measures the Go heap plus system memory. Introspection failure
// yields a zeroed snapshot with the error recorded in its Error field.
func (f *Fallback) MemoryInfo(ctx context.Context) (bridge.MemorySnapshot, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		f.logger.Warnw("System memory introspection failed", "error", err)
		return bridge.ZeroSnapshot(err), nil
	}

	snap := bridge.MemorySnapshot{
		HeapUsed:  ms.HeapAlloc,
		HeapTotal: ms.HeapSys,
		HeapLimit: heapLimit(vm.Total),
		External:  ms.Sys - ms.HeapSys,
		Timestamp: time.Now(),
	}

	if f.proc != nil {
		if mi, err := f.proc.MemoryInfoWithContext(ctx); err == nil {
			snap.RSS = mi.RSS
		}
	}

	if snap.HeapLimit > 0 {
		snap.PercentUsed = float64(snap.HeapUsed) / float64(snap.HeapLimit) * 100
	}
	if snap.PercentUsed > 100 {
		snap.PercentUsed = 100
	}

	return snap, nil
}

// heapLimit resolves the effective heap ceiling: the runtime soft memory
// limit when one is set, otherwise total system memory.
func heapLimit(systemTotal uint64) uint64 {
	limit := debug.SetMemoryLimit(-1)
	if limit > 0 && uint64(limit) < systemTotal {
		return uint64(limit)
	}
	return systemTotal
}

// Optimize runs an explicit collection pass. Aggressive tiers and emergency
// mode additionally return freed pages to the OS. The freed-bytes figure is
// left to the caller's before/after snapshots.
func (f *Fallback) Optimize(ctx context.Context, level bridge.BackendLevel, emergency bool) (uint64, error) {
	if level == bridge.BackendIdle && !emergency {
		return 0, nil
	}

	runtime.GC()
	if emergency || level >= bridge.BackendAggressive {
		debug.FreeOSMemory()
	}

	f.logger.Debugw("Software reclaim pass complete",
		"backend_level", int(level),
		"emergency", emergency)
	return 0, nil
}

// ForceGC is a fixed minimal-intensity reclaim pass.
func (f *Fallback) ForceGC(ctx context.Context) (uint64, error) {
	return f.Optimize(ctx, bridge.BackendGentle, false)
}

// GPUInfo always reports the synthetic software-only capability.
func (f *Fallback) GPUInfo(ctx context.Context) (bridge.GPUCapability, error) {
	return bridge.SoftwareOnlyGPU(), nil
}

// SetGPUAcceleration reports false: there is no GPU state to toggle.
func (f *Fallback) SetGPUAcceleration(ctx context.Context, enable bool) (bool, error) {
	return false, nil
}

// Compute returns a structured not-supported result rather than an error.
func (f *Fallback) Compute(ctx context.Context, req bridge.ComputationRequest) (bridge.ComputationResult, error) {
	return bridge.ComputationResult{
		TaskType: req.TaskType,
		Success:  false,
		Reason:   "gpu compute not supported by software backend",
	}, nil
}

func (f *Fallback) Close() error { return nil }
