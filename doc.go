// Package authcore implements credential authentication with short-lived
// JWT access tokens and rotating refresh tokens carried in HttpOnly
// cookies.
//
// A login opens a session family: one stable family ID plus a current
// token ID that changes on every refresh. Replaying a superseded refresh
// token revokes the entire family, so a stolen token stops working the
// moment either holder rotates past it. Session families live in Redis;
// rotation is a single Lua compare-and-swap, which makes exactly one
// winner out of any number of concurrent refreshes.
//
// Construct a [Manager] through [New] and [Builder.Build]; it is safe for
// concurrent use afterwards.
//
// # Architecture boundaries
//
// authcore is transport-agnostic. It never reads HTTP headers or cookies;
// callers extract the refresh token and pass it in, and set-cookie
// instructions come back as [CookieDirective] values. User storage stays
// behind the [UserProvider] interface, which only ever sees password
// hashes.
//
// # Performance contract
//
// [Manager.CurrentUser] is the hot path: pure JWT verification with no
// store round-trip. Login, Refresh, and Logout are allowed a bounded
// number of Redis round-trips, each capped by the configured store
// timeout.
package authcore
