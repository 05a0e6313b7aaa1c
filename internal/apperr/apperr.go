// Package apperr defines the error kinds surfaced by the store services.
//
// Every error that reaches the HTTP boundary carries a stable, machine
// readable Kind. Handlers map kinds to status codes with HTTPStatus.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error.
type Kind string

const (
	KindValidation        Kind = "validation_error"
	KindNotFound          Kind = "not_found"
	KindCartNotFound      Kind = "cart_not_found"
	KindEmptyCart         Kind = "empty_cart"
	KindConflict          Kind = "conflict"
	KindStorage           Kind = "storage_error"
	KindDeletionProtected Kind = "deletion_protected"
	KindUnauthorized      Kind = "unauthorized"
	KindInternal          Kind = "internal"
)

// Error is the concrete error type returned by services and repositories.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether a client may safely retry the request.
func (e *Error) Retryable() bool {
	return e.Kind == KindStorage || e.Kind == KindConflict
}

func newf(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, nil, format, args...)
}

// ValidationFields reports a failed struct validation with a per-field breakdown.
func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

// NotFound is used both for absent resources and for resources owned by
// another user, so callers cannot tell whether it exists.
func NotFound(resource, id string) *Error {
	return newf(KindNotFound, nil, "%s with ID %s not found", resource, id)
}

func CartNotFound(userID string) *Error {
	return newf(KindCartNotFound, nil, "no cart exists for user %s", userID)
}

func EmptyCart(cartID string) *Error {
	return newf(KindEmptyCart, nil, "cart %s has no items", cartID)
}

func Conflict(err error, format string, args ...any) *Error {
	return newf(KindConflict, err, format, args...)
}

func Storage(err error, format string, args ...any) *Error {
	return newf(KindStorage, err, format, args...)
}

func DeletionProtected(resource, id string) *Error {
	return newf(KindDeletionProtected, nil, "%s with ID %s is referenced by existing orders and cannot be deleted", resource, id)
}

func Unauthorized(format string, args ...any) *Error {
	return newf(KindUnauthorized, nil, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindEmptyCart:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound, KindCartNotFound:
		return http.StatusNotFound
	case KindConflict, KindDeletionProtected:
		return http.StatusConflict
	case KindStorage:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
