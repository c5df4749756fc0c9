package http

import (
	"fmt"
	"net/http"
)

// AppError is an error that maps to a concrete HTTP status.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewBadRequest(message string, err error) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: "bad_request", Message: message, Err: err}
}

func NewNotFound(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Code: "not_found", Message: message}
}

func NewInternal(message string, err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: "internal", Message: message, Err: err}
}

func NewUnavailable(message string, err error) *AppError {
	return &AppError{Status: http.StatusServiceUnavailable, Code: "unavailable", Message: message, Err: err}
}
