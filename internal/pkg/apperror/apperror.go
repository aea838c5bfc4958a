// internal/pkg/apperror/apperror.go
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"gorm.io/gorm"
)

// Type is the normalized error category shown to API clients
type Type string

const (
	TypeNetwork    Type = "network"
	TypeAuth       Type = "auth"
	TypeForbidden  Type = "forbidden"
	TypeValidation Type = "validation"
	TypeNotFound   Type = "not_found"
	TypeConflict   Type = "conflict"
	TypeRateLimit  Type = "rate_limited"
	TypeServer     Type = "server"
	TypeUnknown    Type = "unknown"
)

// Error is a classified error with a human readable message
type Error struct {
	Type    Type
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error
func New(t Type, message string, err error) *Error {
	return &Error{Type: t, Message: message, Err: err}
}

func Validation(message string) *Error { return New(TypeValidation, message, nil) }
func NotFound(message string) *Error   { return New(TypeNotFound, message, nil) }
func Conflict(message string) *Error   { return New(TypeConflict, message, nil) }
func Unauthorized(message string) *Error {
	return New(TypeAuth, message, nil)
}
func Forbidden(message string) *Error { return New(TypeForbidden, message, nil) }

// Network wraps a failed call to an upstream dependency
func Network(message string, err error) *Error { return New(TypeNetwork, message, err) }

// Server wraps an internal failure
func Server(message string, err error) *Error { return New(TypeServer, message, err) }

// Wrap attaches a classification to a sentinel so errors.Is keeps working
func Wrap(t Type, err error) *Error {
	return New(t, err.Error(), err)
}

// From classifies an arbitrary error
func From(err error) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return New(TypeNotFound, "resource not found", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(TypeNetwork, "request timeout", err)
	}
	if errors.Is(err, context.Canceled) {
		return New(TypeNetwork, "request cancelled", err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return New(TypeNetwork, "upstream service unavailable", err)
	}

	return New(TypeUnknown, "unexpected error", err)
}

// IsType reports whether err classifies as t
func IsType(err error, t Type) bool {
	if err == nil {
		return false
	}
	return From(err).Type == t
}

// HTTPStatus maps an error category to a status code
func HTTPStatus(t Type) int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuth:
		return http.StatusUnauthorized
	case TypeForbidden:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeRateLimit:
		return http.StatusTooManyRequests
	case TypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Body is the JSON error payload: {"type": ..., "message": ...}
type Body struct {
	Type    Type   `json:"type"`
	Message string `json:"message"`
}

// Response returns the status code and body to write for err.
// Server and unknown errors never leak their cause.
func Response(err error) (int, Body) {
	e := From(err)
	msg := e.Message
	if e.Type == TypeServer || e.Type == TypeUnknown {
		msg = "internal server error"
	}
	return HTTPStatus(e.Type), Body{Type: e.Type, Message: msg}
}
