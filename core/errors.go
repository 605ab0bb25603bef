package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies backend and collaborator failures so callers can apply
// the corrective-action policy without inspecting transport details:
//
//   - Authorization: expired/invalid token; one refresh-and-retry, then surface
//   - Conflict: duplicate customer or product identity; treated as benign
//   - NotFound: cart/location disappeared; carts are recreated, views degrade
//   - Validation: malformed user input; re-prompt in the same state
//   - Transient: 5xx, timeouts, network; generic failure message, state kept
type ErrorKind int

const (
	// ErrorKindUnknown is the zero value for unclassified failures.
	ErrorKindUnknown ErrorKind = iota
	// ErrorKindAuthorization marks expired or invalid credentials.
	ErrorKindAuthorization
	// ErrorKindConflict marks duplicate-identity rejections.
	ErrorKindConflict
	// ErrorKindNotFound marks missing backend resources.
	ErrorKindNotFound
	// ErrorKindValidation marks malformed or unresolvable user input.
	ErrorKindValidation
	// ErrorKindTransient marks retryable network/backend failures.
	ErrorKindTransient
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrorKindAuthorization:
		return "authorization"
	case ErrorKindConflict:
		return "conflict"
	case ErrorKindNotFound:
		return "not_found"
	case ErrorKindValidation:
		return "validation"
	case ErrorKindTransient:
		return "transient"
	default:
		return "unknown"
	}
}

// BackendError wraps a failure from the commerce backend or a collaborator
// with its taxonomy kind and, where applicable, the HTTP status and operation.
type BackendError struct {
	Kind   ErrorKind
	Op     string
	Status int
	Err    error
}

// Error implements the error interface.
func (e *BackendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError constructs a classified backend error.
func NewBackendError(kind ErrorKind, op string, err error) *BackendError {
	return &BackendError{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the taxonomy kind from an error chain. Unclassified errors
// report ErrorKindUnknown; callers generally treat those like Transient.
func KindOf(err error) ErrorKind {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ErrorKindUnknown
}

// IsConflict reports whether err is a duplicate-identity rejection.
func IsConflict(err error) bool { return KindOf(err) == ErrorKindConflict }

// IsNotFound reports whether err marks a missing backend resource.
func IsNotFound(err error) bool { return KindOf(err) == ErrorKindNotFound }

// IsValidation reports whether err marks malformed user input.
func IsValidation(err error) bool { return KindOf(err) == ErrorKindValidation }

// IsAuthorization reports whether err marks rejected credentials.
func IsAuthorization(err error) bool { return KindOf(err) == ErrorKindAuthorization }

// ErrUnresolved is returned by geocoders when free-text input cannot be
// resolved to coordinates. It carries Validation semantics: the conversation
// re-prompts in place.
var ErrUnresolved = &BackendError{Kind: ErrorKindValidation, Op: "geocode.resolve", Err: errors.New("address not resolved")}
