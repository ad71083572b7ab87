// Package session persists refresh-token families in Redis and implements
// the atomic rotation that makes reuse detection possible. Each family is
// one hash keyed by family ID with a TTL equal to the refresh-token
// lifetime; rotation runs as a single Lua compare-and-swap so two
// concurrent refreshes can never both succeed.
package session
