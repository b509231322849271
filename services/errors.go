package services

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by errors that carry their own status code.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	NotFoundError struct {
		Message string
	}

	ValidationError struct {
		Message string
	}

	UnauthorizedError struct {
		Message string
	}

	ConflictError struct {
		Message      string
		ResourceType string
		ResourceID   string
	}
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ConflictError) Error() string     { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ConflictError) StatusCode() int     { return http.StatusConflict }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ConflictError) Is(target error) bool     { return target == ErrConflict }

func notFound(message string) error {
	return &NotFoundError{Message: message}
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// TooLargeError rejects an upload over the configured size limit.
type TooLargeError struct {
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("File exceeds the %d MB upload limit", e.Limit>>20)
}

func (e *TooLargeError) StatusCode() int { return http.StatusRequestEntityTooLarge }

func (e *TooLargeError) Is(target error) bool { return target == ErrValidation }
