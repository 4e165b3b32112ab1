package services

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error is the one error type services hand back to callers; Status is the
// HTTP status the API layer answers with.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(status int, format string, args ...any) error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(http.StatusNotFound, format, args...)
}

func BadRequest(format string, args ...any) error {
	return newError(http.StatusBadRequest, format, args...)
}

func Unauthorized(format string, args ...any) error {
	return newError(http.StatusUnauthorized, format, args...)
}

func Internal(format string, args ...any) error {
	return newError(http.StatusInternalServerError, format, args...)
}

// StatusOf returns the status carried by err, 500 for foreign errors.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return http.StatusInternalServerError
}

// storeErr turns persistence sentinels into API errors and leaves the rest.
func storeErr(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("%s not found", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return BadRequest("%s already exists", what)
	}
	return err
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
