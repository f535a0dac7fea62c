// Package domainerrors provides coded errors for the domain and service
// layers. Stores return infrastructure sentinels (pkg/platform/sentinel);
// services translate them into coded errors; the transport layer maps codes
// onto HTTP statuses. Codes travel with the error through wrapping, so
// callers test with HasCode rather than string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error for transport-level mapping.
type Code string

const (
	// CodeInvalidInput marks malformed or out-of-range caller input.
	CodeInvalidInput Code = "invalid_input"
	// CodeBadRequest marks a structurally valid request the domain rejects.
	CodeBadRequest Code = "bad_request"
	// CodeNotFound marks a missing entity referenced by id.
	CodeNotFound Code = "not_found"
	// CodeConflict marks business-rule conflicts (duplicate tax id, offer
	// already accepted).
	CodeConflict Code = "conflict"
	// CodeInvariantViolation marks a broken aggregate invariant.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks failures the caller cannot act on.
	CodeInternal Code = "internal"
)

// Error is a coded domain error. It wraps an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf constructs a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause. A nil cause
// returns nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias for HasCode kept for readability at call sites.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the user-facing message, defaulting to a generic one.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}
