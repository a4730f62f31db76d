// Package errs defines the typed errors shared by every layer. Inner layers
// return these; the HTTP boundary translates them to status codes.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

type Kind int

const (
	KindValidation Kind = iota
	KindNotFound
	KindConflict
	KindProviderTransient
	KindProviderPermanent
	KindProviderUnavailable
	KindStoreUnavailable
	KindTimeout
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindProviderTransient:
		return "provider_transient"
	case KindProviderPermanent:
		return "provider_permanent"
	case KindProviderUnavailable:
		return "provider_unavailable"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error carries a kind for boundary translation, a machine-readable code and
// a human-readable message. Err holds the wrapped cause, if any.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf(format, args...),
	}
}

// NotFound builds a not-found error for a named resource, e.g.
// NotFound("vault", id) -> code VAULT_NOT_FOUND.
func NotFound(resource, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    strings.ToUpper(resource) + "_NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    "CONFLICT",
		Message: fmt.Sprintf(format, args...),
	}
}

func ProviderTransient(err error) *Error {
	return &Error{
		Kind:    KindProviderTransient,
		Code:    "PROVIDER_TRANSIENT",
		Message: "transient provider failure",
		Err:     err,
	}
}

func ProviderPermanent(err error) *Error {
	return &Error{
		Kind:    KindProviderPermanent,
		Code:    "PROVIDER_PERMANENT",
		Message: "permanent provider failure",
		Err:     err,
	}
}

func ProviderUnavailable(err error) *Error {
	return &Error{
		Kind:    KindProviderUnavailable,
		Code:    "PROVIDER_UNAVAILABLE",
		Message: "provider unavailable after retries",
		Err:     err,
	}
}

func StoreUnavailable(err error) *Error {
	return &Error{
		Kind:    KindStoreUnavailable,
		Code:    "STORE_UNAVAILABLE",
		Message: "storage backend unavailable",
		Err:     err,
	}
}

func Timeout(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindTimeout,
		Code:    "TIMEOUT",
		Message: fmt.Sprintf(format, args...),
	}
}

func Internal(err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Code:    "INTERNAL_ERROR",
		Message: "internal error",
		Err:     err,
	}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, defaulting to KindInternal for untyped
// errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
