package apperrors

import (
	"errors"
	"net/http"
)

// Shared error taxonomy. Services return these (usually wrapped) and the
// HTTP layers map them onto status codes.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("conflict with existing resource")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("operation not permitted")
)

// HTTPStatus maps a service error onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
