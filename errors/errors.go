// Package errors provides error handling for accelbridge.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Sentinel marking for the bridge error taxonomy
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Tag with a taxonomy sentinel
//	return errors.Mark(err, backend.ErrBackendLoad)
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is         = crdb.Is
	IsAny      = crdb.IsAny
	As         = crdb.As
	Unwrap     = crdb.Unwrap
	UnwrapOnce = crdb.UnwrapOnce
	UnwrapAll  = crdb.UnwrapAll
)

// Sentinel marking. Mark attaches a reference error without changing the
// message; CombineErrors joins a primary error with a secondary one.
var (
	Mark          = crdb.Mark
	CombineErrors = crdb.CombineErrors
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// ErrInvalidRequest indicates malformed caller input. It is the only error
// class that crosses the HTTP boundary as a request-level failure; everything
// else is converted to a failed-outcome value by the facade.
var ErrInvalidRequest = New("invalid request")

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}
