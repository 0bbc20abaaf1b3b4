package simpleshare

import (
	"errors"
	"fmt"
)

// CodeHandleNotFound is the reserved native failure code signalling that a
// handle is no longer known to the native boundary.
const CodeHandleNotFound = "handle_not_found"

// Error types
var (
	// ErrInvalidIdentifier indicates a missing or malformed canonical identifier
	ErrInvalidIdentifier = errors.New("invalid canonical identifier")

	// ErrNilReference indicates a nil content reference was passed
	ErrNilReference = errors.New("content reference is required")

	// ErrNativeUnavailable indicates the native boundary is absent
	ErrNativeUnavailable = errors.New("native boundary unavailable")
)

// NativeError is the {code, message} failure contract of the native boundary.
type NativeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewHandleNotFoundError builds the reserved failure for a stale handle. The
// message follows the grammar understood by ParseStaleHandle.
func NewHandleNotFoundError(handle HandleID) *NativeError {
	return &NativeError{
		Code:    CodeHandleNotFound,
		Message: fmt.Sprintf("no content reference for ident %s", handle),
	}
}

// IsHandleNotFound reports whether err carries the reserved stale-handle code.
func IsHandleNotFound(err error) bool {
	var nerr *NativeError
	return errors.As(err, &nerr) && nerr.Code == CodeHandleNotFound
}

// ValidationError represents malformed caller input. It is never retried.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ReferenceError represents a failed operation on a content reference
type ReferenceError struct {
	CanonicalIdentifier string
	Op                  string
	Err                 error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("reference operation %s failed for %s: %v", e.Op, e.CanonicalIdentifier, e.Err)
}

func (e *ReferenceError) Unwrap() error {
	return e.Err
}
