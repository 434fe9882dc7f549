// Package common defines the error taxonomy shared by services, middleware and
// controllers. Callers match kinds with errors.Is.
package common

import (
	"errors"
	"net/http"
)

// Error kinds.
var (
	ErrBadRequest      = errors.New("bad_request")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not_found")
	ErrConflict        = errors.New("conflict")
	ErrStorage         = errors.New("storage_error")
)

// Token lifecycle errors. All of them are ErrUnauthenticated.
var (
	ErrMissingToken   = &Error{Kind: ErrUnauthenticated, Detail: "Token is missing"}
	ErrExpiredToken   = &Error{Kind: ErrUnauthenticated, Detail: "Token expired"}
	ErrMalformedToken = &Error{Kind: ErrUnauthenticated, Detail: "Invalid token"}
	ErrRevokedToken   = &Error{Kind: ErrUnauthenticated, Detail: "Token has been cancelled"}
)

// Error carries a kind, a user-facing detail and an optional cause.
type Error struct {
	Kind   error
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func BadRequest(detail string) error   { return &Error{Kind: ErrBadRequest, Detail: detail} }
func Unauthorized(detail string) error { return &Error{Kind: ErrUnauthenticated, Detail: detail} }
func Forbidden(detail string) error    { return &Error{Kind: ErrForbidden, Detail: detail} }
func NotFound(detail string) error     { return &Error{Kind: ErrNotFound, Detail: detail} }
func Conflict(detail string) error     { return &Error{Kind: ErrConflict, Detail: detail} }

// Storage wraps a store failure. The cause text is shown to clients.
func Storage(detail string, err error) error {
	return &Error{Kind: ErrStorage, Detail: detail, Err: err}
}

var kinds = []struct {
	kind   error
	status int
}{
	{ErrBadRequest, http.StatusBadRequest},
	{ErrUnauthenticated, http.StatusUnauthorized},
	{ErrForbidden, http.StatusForbidden},
	{ErrNotFound, http.StatusNotFound},
	{ErrConflict, http.StatusConflict},
	{ErrStorage, http.StatusInternalServerError},
}

// KindOf returns the taxonomy kind of err, defaulting to ErrStorage for
// anything unclassified.
func KindOf(err error) error {
	for _, k := range kinds {
		if errors.Is(err, k.kind) {
			return k.kind
		}
	}
	return ErrStorage
}

// StatusCode maps err to its HTTP status.
func StatusCode(err error) int {
	kind := KindOf(err)
	for _, k := range kinds {
		if k.kind == kind {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// Message returns the text that is safe to show to a client.
func Message(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal error"
	}
	msg := e.Detail
	if e.Err != nil && (errors.Is(e.Kind, ErrStorage) || errors.Is(e.Kind, ErrBadRequest)) {
		if msg != "" {
			msg += ": "
		}
		msg += e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.Error()
	}
	return msg
}
