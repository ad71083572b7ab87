package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "tkn" claim. Access and refresh tokens are
// signed with the same key, so the kind claim is the only thing that stops
// a refresh token from being replayed against an access-token check.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

var (
	// ErrInvalid is returned for malformed tokens, bad signatures, and
	// unexpected signing algorithms.
	ErrInvalid = errors.New("invalid token")
	// ErrExpired is returned when the token's expiry is at or before now.
	ErrExpired = errors.New("token expired")
	// ErrWrongKind is returned when a structurally valid token carries the
	// wrong kind claim for the requested parse.
	ErrWrongKind = errors.New("wrong token kind")
)

// SigningMethod selects the signature algorithm for issued tokens.
type SigningMethod string

const (
	MethodHS256   SigningMethod = "hs256"
	MethodEd25519 SigningMethod = "ed25519"
)

// Config holds the signing material and TTLs for a [Codec]. The signing key
// is injected once at construction and never mutated afterwards.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

// AccessClaims is the claim set of an access token. Access tokens are
// stateless: signature plus expiry is the whole validity check.
type AccessClaims struct {
	Kind string `json:"tkn"`
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set of a refresh token. FamilyID is stable
// across a rotation chain; the registered ID (jti) changes on every
// rotation and must match the session store's current token ID.
type RefreshClaims struct {
	Kind     string `json:"tkn"`
	FamilyID string `json:"fid"`
	jwt.RegisteredClaims
}

// Codec signs and verifies access and refresh tokens. Safe for concurrent
// use after construction.
type Codec struct {
	config Config
}

// NewCodec validates cfg and returns a token [Codec].
func NewCodec(cfg Config) (*Codec, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) < 32 {
			return nil, errors.New("hs256 requires a signing key of at least 32 bytes")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Codec{config: cfg}, nil
}

// IssueAccess signs an access token for the given subject and role with
// expiry now + AccessTTL. No side effects, no store writes.
func (c *Codec) IssueAccess(userID, role string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Kind: KindAccess,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.AccessTTL)),
		},
	}

	return c.sign(jwt.NewWithClaims(c.method(), claims))
}

// IssueRefresh signs a refresh token bound to familyID with a freshly
// generated token ID and expiry now + RefreshTTL. The returned token ID is
// what the session store tracks as the family's current token.
func (c *Codec) IssueRefresh(userID, familyID string) (string, string, error) {
	tokenID := uuid.NewString()
	now := time.Now()
	claims := RefreshClaims{
		Kind:     KindRefresh,
		FamilyID: familyID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   userID,
			Issuer:    c.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.RefreshTTL)),
		},
	}

	signed, err := c.sign(jwt.NewWithClaims(c.method(), claims))
	if err != nil {
		return "", "", err
	}
	return tokenID, signed, nil
}

// ParseAccess verifies signature, expiry, and kind of an access token.
//
//	Performance: pure CPU, no store lookup. This is the hot path.
func (c *Codec) ParseAccess(tokenStr string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindAccess {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// ParseRefresh verifies signature, expiry, and kind of a refresh token.
// A valid result still needs a session-store check before it may rotate.
func (c *Codec) ParseRefresh(tokenStr string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if claims.Kind != KindRefresh {
		return nil, ErrWrongKind
	}
	if claims.FamilyID == "" || claims.ID == "" {
		return nil, ErrInvalid
	}
	return claims, nil
}

func (c *Codec) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if c.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(c.config.Leeway))
	}
	if c.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(c.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.verifyKey()
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpired
		}
		return ErrInvalid
	}
	if !parsed.Valid {
		return ErrInvalid
	}

	// jwt/v5 accepts exp == now; the contract here is exclusive, so a token
	// expiring exactly now is already dead when leeway is zero.
	if c.config.Leeway == 0 {
		exp, expErr := claims.GetExpirationTime()
		if expErr != nil || exp == nil {
			return ErrInvalid
		}
		if !exp.After(time.Now()) {
			return ErrExpired
		}
	}

	return nil
}

func (c *Codec) sign(t *jwt.Token) (string, error) {
	key, err := c.signKey()
	if err != nil {
		return "", err
	}
	return t.SignedString(key)
}

func (c *Codec) method() jwt.SigningMethod {
	if c.config.SigningMethod == MethodEd25519 {
		return jwt.SigningMethodEdDSA
	}
	return jwt.SigningMethodHS256
}

func (c *Codec) signKey() (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPrivateKey(c.config.PrivateKey)
	}
	return c.config.PrivateKey, nil
}

func (c *Codec) verifyKey() (interface{}, error) {
	if c.config.SigningMethod == MethodEd25519 {
		return parseEdPublicKey(c.config.PublicKey)
	}
	return c.config.PrivateKey, nil
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
