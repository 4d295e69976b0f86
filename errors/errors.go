// Package errors provides error handling for zeroiq-bot.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints and details for user-facing messages
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
//	// Check errors
//	if errors.Is(err, errors.ErrNotFound) {
//	    // handle not found
//	}
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
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinel errors for the memory engine.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrNotFound indicates an exact-key lookup found no stored answer
	ErrNotFound = New("not found")

	// ErrPersistence indicates the durable store failed a read or write
	// (disk full, permission denied, corruption). Surfaced to the user as
	// a generic failure notice for that operation; the process keeps serving.
	ErrPersistence = New("persistence failure")

	// ErrExport indicates a snapshot write or remote archive push failed.
	// Logged as a warning only; never blocks the primary store write.
	ErrExport = New("export failure")
)

// IsNotFound checks if an error is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsPersistence checks if an error is or wraps ErrPersistence.
func IsPersistence(err error) bool {
	return err != nil && Is(err, ErrPersistence)
}

// IsExport checks if an error is or wraps ErrExport.
func IsExport(err error) bool {
	return err != nil && Is(err, ErrExport)
}

// WrapPersistence wraps an error as a persistence failure with context.
func WrapPersistence(err error, context string) error {
	return Wrap(Wrap(ErrPersistence, err.Error()), context)
}

// WrapExport wraps an error as an export failure with context.
func WrapExport(err error, context string) error {
	return Wrap(Wrap(ErrExport, err.Error()), context)
}
