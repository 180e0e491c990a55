package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/WinterJet2021/MayWin-Core-Backend/internal/pkg/errors"
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

func NotFound(code string, msg string) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf("%w: %s", pkgerrors.ErrNotFound, msg))
}

func Conflict(code string, msg string) *Error {
	return New(http.StatusConflict, code, fmt.Errorf("%w: %s", pkgerrors.ErrConflict, msg))
}

func BadRequest(code string, err error) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf("%w: %v", pkgerrors.ErrInvalidArgument, err))
}

// Resolve maps any error to an HTTP status and code. Wrapped sentinels win
// over the generic 500 when the error was not built with New.
func Resolve(err error, fallbackCode string) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		code := apiErr.Code
		if code == "" {
			code = fallbackCode
		}
		return apiErr.Status, code
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return http.StatusNotFound, fallbackCode
	case errors.Is(err, pkgerrors.ErrConflict):
		return http.StatusConflict, fallbackCode
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return http.StatusBadRequest, fallbackCode
	default:
		return http.StatusInternalServerError, fallbackCode
	}
}
