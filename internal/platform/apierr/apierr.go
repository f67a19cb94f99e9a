package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "not_found"
	CodeForbidden        = "forbidden"
	CodeUnsupportedMedia = "unsupported_media"
	CodeValidation       = "validation"
	CodeUnauthorized     = "unauthorized"
	CodeInternal         = "internal"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, CodeForbidden, fmt.Errorf(format, args...))
}

func UnsupportedMedia(format string, args ...any) *Error {
	return New(http.StatusUnsupportedMediaType, CodeUnsupportedMedia, fmt.Errorf(format, args...))
}

func Validation(format string, args ...any) *Error {
	return New(http.StatusUnprocessableEntity, CodeValidation, fmt.Errorf(format, args...))
}

func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, fmt.Errorf(format, args...))
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}
