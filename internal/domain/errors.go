package domain

import (
	"errors"
	"fmt"
)

// Kind classifies every error the settlement core can surface. The API
// layer maps kinds 1:1 to response codes; nothing escapes untyped.
type Kind string

const (
	KindValidation           Kind = "VALIDATION_ERROR"
	KindConflict             Kind = "CONFLICT"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindInsufficientFunds    Kind = "INSUFFICIENT_FUNDS"
	KindDuplicateTransaction Kind = "DUPLICATE_TRANSACTION"
	KindNotFound             Kind = "NOT_FOUND"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindInternal             Kind = "INTERNAL"
)

// Error is the single error type crossing service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Field   string // set for validation errors with field-level detail
	Err     error
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two domain errors by kind alone, so callers
// can compare against a bare &Error{Kind: ...} sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func NewValidationError(field, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidTransitionError(format string, args ...any) *Error {
	return &Error{Kind: KindInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NewInsufficientFundsError(format string, args ...any) *Error {
	return &Error{Kind: KindInsufficientFunds, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewUnauthorizedError(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// WrapInternal tags an unexpected failure (storage, encoding) so the
// API layer can distinguish it from the recoverable taxonomy.
func WrapInternal(err error, msg string) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf extracts the kind from any error chain; unknown errors report
// KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

func IsKind(err error, k Kind) bool { return KindOf(err) == k }
