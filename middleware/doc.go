// Package middleware exposes HTTP middleware built on authcore access-token
// validation.
//
// # Guards
//
//   - [Guard] — stateless access-token verification, no Redis call.
//   - [RequireRole] — Guard plus an allow-list role check.
//
// Each guard reads the Authorization header, validates the token through
// [authcore.Manager.CurrentUser], and injects the resulting principal into
// the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Manager calls. It does NOT
// implement authentication logic itself and never touches refresh tokens
// or cookies; those belong to the auth endpoints.
package middleware
