// Package errors provides error handling for docwatcher.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Hints for operator-facing messages
//
// Usage:
//
//	if err := os.MkdirAll(dir, 0755); err != nil {
//	    return errors.Mark(errors.Wrapf(err, "create %s", dir), errors.ErrIO)
//	}
//
//	if errors.Is(err, errors.ErrVanished) {
//	    // release the claim, retry later
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
	Mark         = crdb.Mark
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
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinel errors for the import pipeline.
// Use these with errors.Is(); attach them to a concrete failure with Mark so
// the original message is kept.
var (
	// ErrNotFound indicates the requested file does not exist
	ErrNotFound = New("not found")

	// ErrUnsupported indicates the file extension is not on the allow-list
	ErrUnsupported = New("unsupported file type")

	// ErrDuplicate indicates the path was already processed or is in flight
	ErrDuplicate = New("already processed or in progress")

	// ErrVanished indicates the file disappeared before it settled
	ErrVanished = New("file vanished before it settled")

	// ErrIO indicates the destination could not be created or written
	ErrIO = New("io error")

	// ErrInvalidConfig indicates the loaded configuration failed validation
	ErrInvalidConfig = New("invalid configuration")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsIOError checks if an error is or wraps ErrIO
func IsIOError(err error) bool {
	return err != nil && Is(err, ErrIO)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrNotFound)
}

// NewIOError wraps err as an io error with context
func NewIOError(err error, format string, args ...interface{}) error {
	return Mark(Wrapf(err, format, args...), ErrIO)
}
