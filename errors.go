package main

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrUnauthorized = errors.New("unauthorized")

// ValidationError is a missing or malformed form field.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// UpstreamError is a failed call to the media host or the store.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

func upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Op: op, Err: err}
}

// errorKind is the label used for metrics and the HTTP status.
func errorKind(err error) string {
	var verr *ValidationError
	var uerr *UpstreamError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.As(err, &verr):
		return "invalid"
	case errors.As(err, &uerr):
		return "upstream"
	default:
		return "error"
	}
}

func statusFor(kind string) int {
	switch kind {
	case "ok":
		return http.StatusOK
	case "unauthorized":
		return http.StatusUnauthorized
	case "invalid":
		return http.StatusBadRequest
	case "upstream":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
