// Package errors provides error handling for uritemplates.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints and details
//   - Error marks, so one failure can answer to several sentinels
//
// Usage:
//
//	// Wrap a sentinel with the offending input
//	return errors.Wrapf(errors.ErrMalformedTime, "%q", text)
//
//	// Add hints for users
//	return errors.WithHint(err, "was the T missing before S?")
//
//	// Check errors
//	if errors.Is(err, errors.ErrTemplateCompile) {
//	    // any compile failure, whatever its sub-kind
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
	WithHint           = crdb.WithHint
	WithHintf          = crdb.WithHintf
	WithDetail         = crdb.WithDetail
	WithDetailf        = crdb.WithDetailf
	WithSecondaryError = crdb.WithSecondaryError
)

// Error inspection
var (
	Is             = crdb.Is
	IsAny          = crdb.IsAny
	As             = crdb.As
	Unwrap         = crdb.Unwrap
	UnwrapOnce     = crdb.UnwrapOnce
	UnwrapAll      = crdb.UnwrapAll
	Mark           = crdb.Mark
	GetAllHints    = crdb.GetAllHints
	GetAllDetails  = crdb.GetAllDetails
	FlattenHints   = crdb.FlattenHints
	FlattenDetails = crdb.FlattenDetails
)

// GetReportableStackTrace returns the stack trace attached to err, if any.
var GetReportableStackTrace = crdb.GetReportableStackTrace

// Assertions and panics
var (
	AssertionFailedf                 = crdb.AssertionFailedf
	NewAssertionErrorWithWrappedErrf = crdb.NewAssertionErrorWithWrappedErrf
	IsAssertionFailure               = crdb.IsAssertionFailure
)

// Time and duration errors.
var (
	// ErrMalformedTime indicates a time string that is not one of the accepted ISO-8601 forms
	ErrMalformedTime = New("malformed time")

	// ErrInvalidTimeComponent indicates a decomposed time that cannot be normalized
	ErrInvalidTimeComponent = New("invalid time component")

	// ErrMalformedDuration indicates a string that is not an ISO-8601 duration
	ErrMalformedDuration = New("malformed duration")

	// ErrMalformedRange indicates a time range that is not start/stop, start/duration or duration/stop
	ErrMalformedRange = New("malformed time range")
)

// Template errors. Compile sub-kinds must be built with NewCompileError so
// that errors.Is(err, ErrTemplateCompile) holds alongside the sub-kind.
var (
	// ErrTemplateCompile indicates a template that could not be compiled
	ErrTemplateCompile = New("template compile error")

	ErrUnsupportedLegacySyntax = New("unsupported legacy syntax")
	ErrUnknownField            = New("unknown field")
	ErrUnknownQualifier        = New("unknown qualifier")
	ErrMissingQualifier        = New("missing qualifier")
	ErrInvalidQualifier        = New("invalid qualifier value")

	// ErrNoMatch indicates a name that does not match the template
	ErrNoMatch = New("name does not match template")

	// ErrNonIntegralPeriod indicates a periodic field whose period cannot be stepped in whole units
	ErrNonIntegralPeriod = New("period cannot be expressed as integer steps")

	// ErrUnboundedRange indicates a range enumeration that cannot advance
	ErrUnboundedRange = New("unbounded range")
)

// General sentinels used by the catalog and the command line.
var (
	// ErrNotFound indicates the requested resource does not exist
	ErrNotFound = New("not found")

	// ErrInvalidRequest indicates the request was malformed or invalid
	ErrInvalidRequest = New("invalid request")
)

// IsNotFoundError checks if an error is or wraps ErrNotFound
func IsNotFoundError(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsInvalidRequestError checks if an error is or wraps ErrInvalidRequest
func IsInvalidRequestError(err error) bool {
	return err != nil && Is(err, ErrInvalidRequest)
}

// IsTemplateCompileError checks if an error is any template compile failure
func IsTemplateCompileError(err error) bool {
	return err != nil && Is(err, ErrTemplateCompile)
}

// IsNoMatchError checks if an error is or wraps ErrNoMatch
func IsNoMatchError(err error) bool {
	return err != nil && Is(err, ErrNoMatch)
}

// IsTimeError checks if an error is one of the time, duration or range input errors
func IsTimeError(err error) bool {
	return err != nil && IsAny(err, ErrMalformedTime, ErrInvalidTimeComponent, ErrMalformedDuration, ErrMalformedRange)
}

// NewCompileError wraps a compile sub-kind with a formatted message and marks
// the result as ErrTemplateCompile.
func NewCompileError(kind error, format string, args ...interface{}) error {
	return Mark(Wrapf(kind, format, args...), ErrTemplateCompile)
}

// NewNotFoundError creates a not-found error with a formatted message
func NewNotFoundError(format string, args ...interface{}) error {
	return Wrap(ErrNotFound, Newf(format, args...).Error())
}

// NewInvalidRequestError creates an invalid-request error with a formatted message
func NewInvalidRequestError(format string, args ...interface{}) error {
	return Wrap(ErrInvalidRequest, Newf(format, args...).Error())
}
