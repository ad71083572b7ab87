package authcore

import (
	"errors"
	"net/http"
	"time"

	"github.com/smartshield/authcore/password"
	"github.com/smartshield/authcore/token"
)

// Config groups all Manager tuning knobs. Loaded once at startup and
// treated as immutable after [Builder.Build].
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Cookie   CookieConfig
	Account  AccountConfig
	Password password.Config
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TokenConfig carries signing material and token lifetimes.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default) or "ed25519"
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// SessionConfig controls the Redis session-family store.
type SessionConfig struct {
	RedisPrefix string
	// StoreTimeout bounds every Redis round-trip; exceeding it surfaces
	// ErrStoreUnavailable to the caller.
	StoreTimeout time.Duration
}

// CookieConfig shapes the refresh-token cookie directive emitted on
// login, signup, and refresh.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
}

// AccountConfig controls signup validation and defaults.
type AccountConfig struct {
	DefaultRole       string
	MinPasswordLength int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the in-process counter registry.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration [New] starts from. Callers
// adjust fields and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    14 * 24 * time.Hour,
			SigningMethod: string(token.MethodHS256),
		},
		Session: SessionConfig{
			RedisPrefix:  "ac",
			StoreTimeout: 2 * time.Second,
		},
		Cookie: CookieConfig{
			Name:     "refresh_token",
			Path:     "/",
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		},
		Account: AccountConfig{
			DefaultRole:       "user",
			MinPasswordLength: 6,
		},
		Password: password.DefaultConfig(),
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Validate checks cross-field constraints not already enforced by the
// subpackage constructors.
func (c Config) Validate() error {
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Session.StoreTimeout <= 0 {
		return errors.New("session store timeout must be positive")
	}
	if c.Cookie.Name == "" {
		return errors.New("cookie name must not be empty")
	}
	if c.Account.MinPasswordLength < 6 {
		return errors.New("minimum password length must be at least 6")
	}
	return nil
}
