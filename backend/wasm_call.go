package backend

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/teranos/accelbridge/errors"
)

// Shared-memory call protocol for accelerator modules.
//
// Strings cross the boundary as (ptr, len) pairs in WASM linear memory,
// allocated through the module's exported accel_alloc/accel_free. Return
// values are packed as (ptr << 32) | len in a u64.

const (
	allocExport = "accel_alloc"
	freeExport  = "accel_free"
)

// callString invokes a named module function with a string input and returns
// the string output.
func callString(ctx context.Context, mod api.Module, fnName string, input string) (string, error) {
	allocFn := mod.ExportedFunction(allocExport)
	freeFn := mod.ExportedFunction(freeExport)
	targetFn := mod.ExportedFunction(fnName)

	if allocFn == nil || freeFn == nil || targetFn == nil {
		return "", errors.Newf("accel module: missing export %q", fnName)
	}

	inputBytes := []byte(input)
	inputSize := uint64(len(inputBytes))

	var inputPtr uint64
	if inputSize > 0 {
		results, err := allocFn.Call(ctx, inputSize)
		if err != nil {
			return "", errors.Wrapf(err, "accel alloc for %s (size=%d)", fnName, inputSize)
		}
		inputPtr = results[0]
		if inputPtr == 0 {
			return "", errors.Newf("accel alloc returned null for %s (size=%d)", fnName, inputSize)
		}

		if !mod.Memory().Write(uint32(inputPtr), inputBytes) {
			// Best effort to free, but surface the write failure
			if _, freeErr := freeFn.Call(ctx, inputPtr, inputSize); freeErr != nil {
				return "", errors.Wrapf(freeErr, "accel %s memory write out of range at ptr=%d size=%d (free also failed)", fnName, inputPtr, inputSize)
			}
			return "", errors.Newf("accel %s memory write out of range at ptr=%d size=%d", fnName, inputPtr, inputSize)
		}
	}

	results, err := targetFn.Call(ctx, inputPtr, inputSize)
	if err != nil {
		if inputSize > 0 {
			if _, freeErr := freeFn.Call(ctx, inputPtr, inputSize); freeErr != nil {
				return "", errors.Wrapf(err, "accel call %s failed (free of input at ptr=%d also failed: %v)", fnName, inputPtr, freeErr)
			}
		}
		return "", errors.Wrapf(err, "accel call %s", fnName)
	}

	if inputSize > 0 {
		if _, err := freeFn.Call(ctx, inputPtr, inputSize); err != nil {
			// Input was processed but its buffer leaked; the bridge is called
			// repeatedly, so treat the leak as a hard failure
			return "", errors.Wrapf(err, "accel %s leaked input buffer at ptr=%d size=%d", fnName, inputPtr, inputSize)
		}
	}

	return unpackResult(ctx, mod, freeFn, fnName, results[0])
}

// callNoArgs invokes a named module function with no input and returns the
// string output. Used for version and init exports.
func callNoArgs(ctx context.Context, mod api.Module, fnName string) (string, error) {
	freeFn := mod.ExportedFunction(freeExport)
	targetFn := mod.ExportedFunction(fnName)

	if freeFn == nil || targetFn == nil {
		return "", errors.Newf("accel module: missing export %q", fnName)
	}

	results, err := targetFn.Call(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "accel call %s", fnName)
	}

	return unpackResult(ctx, mod, freeFn, fnName, results[0])
}

// unpackResult decodes a packed (ptr << 32) | len return value, copies the
// bytes out of module memory, and frees the result buffer.
func unpackResult(ctx context.Context, mod api.Module, freeFn api.Function, fnName string, packed uint64) (string, error) {
	resultPtr := uint32(packed >> 32)
	resultLen := uint32(packed & 0xFFFFFFFF)

	if resultPtr == 0 || resultLen == 0 {
		return "", errors.Newf("accel %s returned null result (ptr=%d, len=%d)", fnName, resultPtr, resultLen)
	}

	resultBytes, ok := mod.Memory().Read(resultPtr, resultLen)
	if !ok {
		return "", errors.Newf("accel %s memory read out of range at ptr=%d len=%d", fnName, resultPtr, resultLen)
	}

	// Copy before freeing (memory invalidated after free)
	output := make([]byte, len(resultBytes))
	copy(output, resultBytes)

	if _, err := freeFn.Call(ctx, uint64(resultPtr), uint64(resultLen)); err != nil {
		return "", errors.Wrapf(err, "accel %s leaked result buffer at ptr=%d size=%d", fnName, resultPtr, resultLen)
	}

	return string(output), nil
}
