package authcore

import (
	"errors"
	"net/http"
)

// StatusCode maps authcore errors to HTTP status codes so boundary layers
// answer uniformly. Security errors (revoked, reuse) intentionally map to
// a plain 401: the distinction lives in audit events and metrics, not in
// the response the presenter of the token can read.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrWrongTokenKind),
		errors.Is(err, ErrSessionRevoked),
		errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrTokenReuse):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmailExists):
		return http.StatusConflict
	case errors.Is(err, ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, ErrConcurrentRefresh):
		return http.StatusConflict
	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
