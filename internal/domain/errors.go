package domain

import (
	"errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

// ErrorKind is the closed set of failure categories understood by the transport.
type ErrorKind string

const (
	KindBadRequest      ErrorKind = "bad_request"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindConflict        ErrorKind = "conflict"
	KindInternal        ErrorKind = "internal"
)

// Status returns the HTTP status paired with the kind.
func (k ErrorKind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single error value handlers return. It is created where the
// failure happens and travels unchanged up to the dispatcher.
type Error struct {
	Kind    ErrorKind
	Message string
	Extras  map[string]any
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// WithExtra returns a copy of e carrying key in its extras.
func (e *Error) WithExtra(key string, value any) *Error {
	cp := *e
	cp.Extras = make(map[string]any, len(e.Extras)+1)
	for k, v := range e.Extras {
		cp.Extras[k] = v
	}
	cp.Extras[key] = value
	return &cp
}

func newError(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func BadRequest(msg string) *Error { return newError(KindBadRequest, msg, nil) }

func Unauthenticated(msg string) *Error { return newError(KindUnauthenticated, msg, nil) }

func Forbidden(msg string) *Error { return newError(KindForbidden, msg, nil) }

// NotFound reports a missing resource, e.g. NotFound("client").
func NotFound(resource string) *Error {
	if resource == "" {
		return newError(KindNotFound, "not found", nil)
	}
	return newError(KindNotFound, resource+" not found", nil)
}

func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

// Internal wraps err. The message and cause are for logs only.
func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// FromError classifies any error into the taxonomy. Errors raised by
// collaborators as go-errors envelopes are mapped by category; anything
// unknown is internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return newError(kindOfCategory(rich.Category), rich.Message, err)
	}
	return Internal("unexpected error", err)
}

func kindOfCategory(c goerrors.Category) ErrorKind {
	switch c {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return KindBadRequest
	case goerrors.CategoryAuth:
		return KindUnauthenticated
	case goerrors.CategoryAuthz:
		return KindForbidden
	case goerrors.CategoryNotFound:
		return KindNotFound
	case goerrors.CategoryConflict:
		return KindConflict
	default:
		return KindInternal
	}
}

// KindOf returns the kind err would be reported as.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

func IsBadRequest(err error) bool { return KindOf(err) == KindBadRequest }

func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

func IsConflict(err error) bool { return KindOf(err) == KindConflict }

func IsInternal(err error) bool { return KindOf(err) == KindInternal }
