// Package apierror defines the error kinds the services report and the JSON
// envelope handlers send back. Driver and internal messages never reach clients.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindUnauthorized
)

// Error is a classified error. Detail is safe to show to the caller.
type Error struct {
	Kind   Kind
	Detail string
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind and detail, so sentinel values work across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Detail == e.Detail
}

func Validation(detail string) *Error { return &Error{Kind: KindValidation, Detail: detail} }

func ValidationFields(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Detail: "validation failed", Fields: fields}
}

func NotFound(detail string) *Error     { return &Error{Kind: KindNotFound, Detail: detail} }
func Conflict(detail string) *Error     { return &Error{Kind: KindConflict, Detail: detail} }
func Unauthorized(detail string) *Error { return &Error{Kind: KindUnauthorized, Detail: detail} }

// Internal wraps an unexpected failure; only detail is exposed.
func Internal(detail string, err error) *Error {
	return &Error{Kind: KindInternal, Detail: detail, Err: err}
}

// KindOf reports the kind of err, KindInternal when it is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Response is the body of every 4xx/5xx reply.
type Response struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ToResponse builds the envelope for err.
func ToResponse(err error) Response {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return Response{Error: e.Detail, Fields: e.Fields}
	}
	if errors.As(err, &e) {
		return Response{Error: e.Detail}
	}
	return Response{Error: "internal server error"}
}
