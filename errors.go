package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned for any login failure caused by the
	// submitted email or password. The message is deliberately uniform so
	// callers cannot distinguish an unknown email from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists is returned by signup when the email is already registered.
	ErrEmailExists = errors.New("email already registered")
	// ErrValidationFailed is returned when signup input fails shape validation.
	ErrValidationFailed = errors.New("validation failed")
	// ErrUserNotFound is the sentinel a UserProvider returns for unknown users.
	ErrUserNotFound = errors.New("user not found")

	// ErrTokenInvalid is returned for malformed or incorrectly signed tokens.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned for tokens past their expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrWrongTokenKind is returned when an access token is presented where a
	// refresh token is expected, or the reverse.
	ErrWrongTokenKind = errors.New("wrong token kind")

	// ErrSessionRevoked is returned when the refresh token's family has been
	// terminated by logout or reuse detection. The client must re-authenticate.
	ErrSessionRevoked = errors.New("session revoked")
	// ErrSessionNotFound is returned when the refresh token's family does not
	// exist or has expired out of the store.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTokenReuse is returned when a superseded refresh token is replayed.
	// The whole family is revoked before this error surfaces: replay of a
	// rotated token means either the client or a thief holds a stale copy,
	// and there is no way to tell which party is presenting it.
	ErrTokenReuse = errors.New("refresh token reuse detected")
	// ErrConcurrentRefresh is returned to the loser of a rotation race. It is
	// not a security event; the caller should retry the whole refresh.
	ErrConcurrentRefresh = errors.New("concurrent refresh lost rotation race")

	// ErrStoreUnavailable is returned when the session store cannot be
	// reached within the configured timeout. Safe to retry.
	ErrStoreUnavailable = errors.New("session store unavailable")
	// ErrManagerNotReady is returned when a Manager is used before Build
	// wired its dependencies.
	ErrManagerNotReady = errors.New("manager not initialized")
)
