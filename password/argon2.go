package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKB    uint32 = 8 * 1024
	minTimeCost    uint32 = 1
	minParallelism uint8  = 1
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
)

// ErrMalformedHash is returned when a stored hash cannot be parsed as a
// PHC argon2id string.
var ErrMalformedHash = errors.New("malformed password hash")

// Config holds argon2id cost parameters. Values below the package minimums
// are rejected at construction.
type Config struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultConfig returns moderate interactive-login costs.
func DefaultConfig() Config {
	return Config{
		Memory:      64 * 1024,
		Time:        2,
		Parallelism: 2,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Hasher hashes and verifies passwords using argon2id in PHC string
// format. Safe for concurrent use.
type Hasher struct {
	config Config
}

// NewHasher validates cfg and returns a [Hasher].
func NewHasher(cfg Config) (*Hasher, error) {
	switch {
	case cfg.Memory < minMemoryKB:
		return nil, errors.New("password memory must be >= 8192 KiB")
	case cfg.Time < minTimeCost:
		return nil, errors.New("password time must be >= 1")
	case cfg.Parallelism < minParallelism:
		return nil, errors.New("password parallelism must be >= 1")
	case cfg.SaltLength < minSaltLength:
		return nil, errors.New("password salt length must be >= 16")
	case cfg.KeyLength < minKeyLength:
		return nil, errors.New("password key length must be >= 16")
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives an argon2id hash with a fresh random salt. Length policy is
// the caller's concern; the raw password bytes are used as provided.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	derived := argon2.IDKey(
		[]byte(password),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		base64.StdEncoding.EncodeToString(salt),
		base64.StdEncoding.EncodeToString(derived),
	), nil
}

// Verify reports whether password matches encodedHash using the cost
// parameters embedded in the hash. Comparison is constant-time.
func (h *Hasher) Verify(password, encodedHash string) (bool, error) {
	memory, timeCost, parallelism, salt, want, err := parsePHC(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(password),
		salt,
		timeCost,
		memory,
		parallelism,
		uint32(len(want)),
	)

	return subtle.ConstantTimeCompare(computed, want) == 1, nil
}

func parsePHC(encodedHash string) (memory, timeCost uint32, parallelism uint8, salt, hash []byte, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	version, convErr := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if !strings.HasPrefix(parts[2], "v=") || convErr != nil || version != argon2.Version {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	for _, pair := range strings.Split(parts[3], ",") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return 0, 0, 0, nil, nil, ErrMalformedHash
		}
		switch kv[0] {
		case "m":
			v, e := strconv.ParseUint(kv[1], 10, 32)
			if e != nil {
				return 0, 0, 0, nil, nil, ErrMalformedHash
			}
			memory = uint32(v)
		case "t":
			v, e := strconv.ParseUint(kv[1], 10, 32)
			if e != nil {
				return 0, 0, 0, nil, nil, ErrMalformedHash
			}
			timeCost = uint32(v)
		case "p":
			v, e := strconv.ParseUint(kv[1], 10, 8)
			if e != nil {
				return 0, 0, 0, nil, nil, ErrMalformedHash
			}
			parallelism = uint8(v)
		default:
			return 0, 0, 0, nil, nil, ErrMalformedHash
		}
	}
	if memory == 0 || timeCost == 0 || parallelism == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	salt, err = base64.StdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < int(minSaltLength) {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}
	hash, err = base64.StdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return 0, 0, 0, nil, nil, ErrMalformedHash
	}

	return memory, timeCost, parallelism, salt, hash, nil
}
