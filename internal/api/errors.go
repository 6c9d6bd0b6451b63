package api

import (
	"errors"
	"net/http"

	"github.com/taskflow/notify/internal/domain"
	"github.com/taskflow/notify/internal/service/auth"
	"github.com/taskflow/notify/internal/store"
)

// MapErrorToStatusCode translates domain/store/auth errors to HTTP status
// codes. Unknown errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-safe message for the error.
func GetSafeErrorMessage(err error) string {
	switch MapErrorToStatusCode(err) {
	case http.StatusNotFound:
		return "Resource not found"
	case http.StatusConflict:
		return "Resource already exists"
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusUnauthorized:
		return "Authentication failed"
	default:
		return "Internal server error"
	}
}
