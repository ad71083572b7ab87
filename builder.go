package authcore

import (
	"errors"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/smartshield/authcore/password"
	"github.com/smartshield/authcore/session"
	"github.com/smartshield/authcore/token"
)

// Builder assembles a [Manager]. A Builder is single-use; Build returns an
// error on reuse.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	userProvider UserProvider
	auditSink    AuditSink
	warn         func(msg string)
	warnSet      bool

	built bool
}

// New returns a Builder preloaded with defaults. Callers must still provide
// a Redis client, a user provider, and signing key material.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the full configuration. The config is cloned; later
// mutation of cfg does not affect the builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSigningKey sets the HS256 secret without replacing the rest of the
// configuration.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.config.Token.PrivateKey = cloneBytes(key)
	return b
}

// WithRedis sets the Redis client backing the session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the user store adapter.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.userProvider = up
	return b
}

// WithAuditSink sets the destination for audit events. Without a sink,
// events are silently discarded.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithWarnLogger sets the destination for operational warnings, such as
// dropped audit events reported at Close. Pass nil to silence them; the
// default writes through the standard log package.
func (b *Builder) WithWarnLogger(fn func(msg string)) *Builder {
	b.warn = fn
	b.warnSet = true
	return b
}

// WithMetricsEnabled toggles the in-process counter registry.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, wires the dependencies, and returns
// the ready Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.userProvider == nil {
		return nil, errors.New("user provider required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := token.NewCodec(token.Config{
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		SigningMethod: token.SigningMethod(cfg.Token.SigningMethod),
		PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
		PublicKey:     cloneBytes(cfg.Token.PublicKey),
		Issuer:        cfg.Token.Issuer,
		Leeway:        cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		config:       cfg,
		tokens:       codec,
		sessions:     session.NewStore(b.redis, cfg.Session.RedisPrefix),
		passwords:    hasher,
		userProvider: b.userProvider,
		audit:        newAuditDispatcher(cfg.Audit, b.auditSink),
		warn:         b.warn,
	}
	if !b.warnSet {
		m.warn = func(msg string) { log.Print(msg) }
	}
	if cfg.Metrics.Enabled {
		m.metrics = NewMetrics()
	}

	b.built = true

	return m, nil
}
