// Package apperrors defines the error taxonomy shared across the engine.
// Every failure surfaced to a caller is one of four kinds; the boundary
// layer translates kinds to HTTP status codes and never leaks an
// untranslated internal fault.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for boundary translation.
type Kind int

const (
	// KindValidation marks empty or malformed input. Recoverable: the
	// caller must correct the request.
	KindValidation Kind = iota
	// KindNotFound marks a missing resource: no documents in the store,
	// no prior result to explain.
	KindNotFound
	// KindProcessing marks an ingestion or synthesis failure, e.g. a
	// corrupt file.
	KindProcessing
	// KindIO marks a durable-storage failure, e.g. an unwritable
	// export directory.
	KindIO
)

// String returns the taxonomy label for the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindProcessing:
		return "processing"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// Error is a classified error. It wraps an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation creates a validation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Processing creates a processing error wrapping its cause.
func Processing(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindProcessing, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IO creates an IO error wrapping its cause.
func IO(cause error, format string, args ...any) *Error {
	return &Error{Kind: KindIO, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf reports the kind of err, or KindProcessing for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProcessing
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
