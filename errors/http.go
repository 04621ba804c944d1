package errors

import (
	"errors"
	"net/http"
)

// HTTPStatus translates a service error into the status code surfaced
// by the web boundary. Unknown errors are treated as internal faults.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
