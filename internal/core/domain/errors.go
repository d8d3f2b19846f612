package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a workflow failure.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidInput       Kind = "invalid_input"
	KindPreconditionFailed Kind = "precondition_failed"
	KindAlreadyVerified    Kind = "already_verified"
	KindStorage            Kind = "storage_error"
	KindDispatch           Kind = "dispatch_error"
)

const (
	msgAlreadyVerified = "This Account has already been verified and fully activated"
	msgKYCNotSubmitted = "KYC must be submitted before it can be verified."
)

// Error is the structured error returned across the core boundary.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // Field-level detail, InvalidInput only
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to the status code a web layer should use.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidInput, KindPreconditionFailed, KindAlreadyVerified:
		return http.StatusBadRequest
	case KindDispatch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError attaches a cause.
func WrapError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// ErrNotFound reports a missing account.
func ErrNotFound(what string) *Error {
	return NewError(KindNotFound, what+" not found")
}

// ErrInvalidInput carries per-field validation messages.
func ErrInvalidInput(fields map[string]string) *Error {
	return &Error{Kind: KindInvalidInput, Message: "invalid verification payload", Fields: fields}
}

// ErrAlreadyVerified is returned by the terminal-state guard.
func ErrAlreadyVerified() *Error {
	return NewError(KindAlreadyVerified, msgAlreadyVerified)
}

// ErrKYCNotSubmitted is returned when verification precedes submission.
func ErrKYCNotSubmitted() *Error {
	return NewError(KindPreconditionFailed, msgKYCNotSubmitted)
}

// KindOf returns the Kind of err, or "" if err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
