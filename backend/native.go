package backend

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/teranos/accelbridge/bridge"
	"github.com/teranos/accelbridge/errors"
)

// Exported operation functions expected from an accelerator module.
const (
	fnMemoryInfo = "memory_info"
	fnOptimize   = "optimize"
	fnForceGC    = "force_gc"
	fnGPUInfo    = "gpu_info"
	fnGPUToggle  = "gpu_toggle"
	fnGPUCompute = "gpu_compute"
	fnInit       = "backend_init"
	fnVersion    = "backend_version"
)

// wireResponse is the JSON envelope every accelerator function returns.
type wireResponse struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Native executes a loaded accelerator module through wazero. A single
// module instance is reused for all calls; access is serialized by a mutex.
type Native struct {
	runtime  wazero.Runtime
	compiled wazero.CompiledModule
	mod      api.Module
	version  string
	logger   *zap.SugaredLogger

	mu sync.Mutex
}

// NewNative compiles and instantiates an accelerator module from raw bytes,
// runs its init entry point if present, and queries its version. Any failure
// is marked ErrBackendLoad; the caller advances to the next candidate.
func NewNative(ctx context.Context, wasmBytes []byte, logger *zap.SugaredLogger) (*Native, error) {
	r := wazero.NewRuntime(ctx)

	compiled, err := r.CompileModule(ctx, wasmBytes)
	if err != nil {
		r.Close(ctx)
		return nil, errors.Mark(errors.Wrap(err, "accel compile"), ErrBackendLoad)
	}

	mod, err := r.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("accel-backend"))
	if err != nil {
		r.Close(ctx)
		return nil, errors.Mark(errors.Wrap(err, "accel instantiate"), ErrBackendLoad)
	}

	n := &Native{
		runtime:  r,
		compiled: compiled,
		mod:      mod,
		logger:   logger,
	}

	// Init entry point is optional; when exported, its failure rejects the
	// candidate
	if mod.ExportedFunction(fnInit) != nil {
		if _, err := n.call(ctx, fnInit, nil); err != nil {
			r.Close(ctx)
			return nil, errors.Mark(errors.Wrap(err, "accel init"), ErrBackendLoad)
		}
	}

	n.version = n.queryVersion(ctx)

	return n, nil
}

// queryVersion asks the module for its version string. A missing or failing
// version export is not fatal; the version just reads empty.
func (n *Native) queryVersion(ctx context.Context) string {
	if n.mod.ExportedFunction(fnVersion) == nil {
		return ""
	}
	raw, err := n.call(ctx, fnVersion, nil)
	if err != nil {
		n.logger.Debugw("Accel version query failed", "error", err)
		return ""
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		// Tolerate a bare, unquoted version string
		return strings.TrimSpace(string(raw))
	}
	return strings.TrimSpace(v)
}

func (n *Native) Kind() Kind      { return KindNative }
func (n *Native) Version() string { return n.version }

// call serializes a payload, invokes the named export, and decodes the
// response envelope. A nil payload maps to a no-argument call.
func (n *Native) call(ctx context.Context, fnName string, payload interface{}) (json.RawMessage, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var (
		out string
		err error
	)
	if payload == nil {
		out, err = callNoArgs(ctx, n.mod, fnName)
	} else {
		input, merr := json.Marshal(payload)
		if merr != nil {
			return nil, errors.Mark(errors.Wrapf(merr, "marshal %s payload", fnName), ErrSerialization)
		}
		out, err = callString(ctx, n.mod, fnName, string(input))
	}
	if err != nil {
		return nil, errors.Mark(err, ErrBackendOperation)
	}

	var resp wireResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "decode %s response", fnName), ErrSerialization)
	}
	if resp.Status != "ok" {
		return nil, errors.Mark(errors.Newf("accel %s: %s", fnName, resp.Message), ErrBackendOperation)
	}
	return resp.Result, nil
}

func (n *Native) MemoryInfo(ctx context.Context) (bridge.MemorySnapshot, error) {
	raw, err := n.call(ctx, fnMemoryInfo, nil)
	if err != nil {
		return bridge.MemorySnapshot{}, err
	}

	var snap bridge.MemorySnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return bridge.MemorySnapshot{}, errors.Mark(errors.Wrap(err, "decode memory snapshot"), ErrSerialization)
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	if snap.PercentUsed < 0 {
		snap.PercentUsed = 0
	}
	if snap.PercentUsed > 100 {
		snap.PercentUsed = 100
	}
	return snap, nil
}

func (n *Native) Optimize(ctx context.Context, level bridge.BackendLevel, emergency bool) (uint64, error) {
	payload := map[string]interface{}{
		"level":     int(level),
		"emergency": emergency,
	}
	raw, err := n.call(ctx, fnOptimize, payload)
	if err != nil {
		return 0, err
	}
	return decodeFreed(raw)
}

func (n *Native) ForceGC(ctx context.Context) (uint64, error) {
	raw, err := n.call(ctx, fnForceGC, nil)
	if err != nil {
		return 0, err
	}
	return decodeFreed(raw)
}

func decodeFreed(raw json.RawMessage) (uint64, error) {
	var res struct {
		FreedBytes int64 `json:"freed_bytes"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return 0, errors.Mark(errors.Wrap(err, "decode reclaim result"), ErrSerialization)
	}
	if res.FreedBytes < 0 {
		return 0, nil
	}
	return uint64(res.FreedBytes), nil
}

func (n *Native) GPUInfo(ctx context.Context) (bridge.GPUCapability, error) {
	raw, err := n.call(ctx, fnGPUInfo, nil)
	if err != nil {
		return bridge.GPUCapability{}, err
	}

	var info bridge.GPUCapability
	if err := json.Unmarshal(raw, &info); err != nil {
		return bridge.GPUCapability{}, errors.Mark(errors.Wrap(err, "decode gpu capability"), ErrSerialization)
	}
	if info.Timestamp.IsZero() {
		info.Timestamp = time.Now()
	}
	return info, nil
}

func (n *Native) SetGPUAcceleration(ctx context.Context, enable bool) (bool, error) {
	raw, err := n.call(ctx, fnGPUToggle, map[string]bool{"enable": enable})
	if err != nil {
		return false, err
	}

	var res struct {
		Supported bool `json:"supported"`
		Enabled   bool `json:"enabled"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return false, errors.Mark(errors.Wrap(err, "decode gpu toggle result"), ErrSerialization)
	}
	return res.Supported, nil
}

func (n *Native) Compute(ctx context.Context, req bridge.ComputationRequest) (bridge.ComputationResult, error) {
	raw, err := n.call(ctx, fnGPUCompute, req)
	if err != nil {
		return bridge.ComputationResult{TaskType: req.TaskType}, err
	}

	return bridge.ComputationResult{
		TaskType: req.TaskType,
		Success:  true,
		Result:   raw,
	}, nil
}

// Close releases the wazero runtime and all module resources.
func (n *Native) Close() error {
	return n.runtime.Close(context.Background())
}
