package audiodescricao

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
)

// Kind classifies a failure so the HTTP layer can pick a status code.
type Kind string

const (
	KindMissingImage      Kind = "MissingImage"
	KindInvalidImage      Kind = "InvalidImage"
	KindInvalidBody       Kind = "InvalidBody"
	KindBodyTooLarge      Kind = "BodyTooLarge"
	KindFetch             Kind = "FetchError"
	KindMissingCredential Kind = "MissingCredential"
	KindUpstream          Kind = "UpstreamCallError"
	KindEmptyResult       Kind = "EmptyResultError"
	KindUnexpected        Kind = "UnexpectedError"
)

// Error is the error type returned by Normalize and Service.Describe.
type Error struct {
	Kind Kind

	// UpstreamStatus is the status returned when fetching a remote image, zero
	// if the fetch never got a response.
	UpstreamStatus int

	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus returns the status code a handler should respond with.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindMissingImage, KindInvalidImage, KindInvalidBody, KindFetch:
		return http.StatusBadRequest
	case KindBodyTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Code is the envelope error code. It is the HTTP status, except for fetch
// failures that got a response where the upstream status is reported.
func (e *Error) Code() string {
	if e.Kind == KindFetch && e.UpstreamStatus != 0 {
		return strconv.Itoa(e.UpstreamStatus)
	}
	return strconv.Itoa(e.HTTPStatus())
}

// NewError returns an *Error of the given kind wrapping err, which may be nil.
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// AsError converts any error into an *Error, anything unknown becomes
// KindUnexpected.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(KindUnexpected, "unexpected server error", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
