// Package token signs and verifies the two JWT kinds used by authcore:
// short-lived stateless access tokens and long-lived refresh tokens bound
// to a session family. Verification here covers signature, expiry, and
// kind only; whether a refresh token is still the current one in its
// family is the session store's call.
package token
