package session

import (
	"time"

	"github.com/google/uuid"
)

// Record tracks one refresh-token family: the rotation chain of refresh
// tokens issued from a single login. At most one CurrentTokenID is valid
// per family at any time; presenting any other token ID is a replay.
type Record struct {
	FamilyID       string
	UserID         string
	Role           string
	CurrentTokenID string
	CreatedAt      int64
	LastRotatedAt  int64
	ExpiresAt      int64
	Revoked        bool
}

// NewRecord creates a Record with a fresh family ID. CurrentTokenID is left
// empty; the caller sets it once the first refresh token has been issued.
func NewRecord(userID, role string, ttl time.Duration) *Record {
	now := time.Now()
	return &Record{
		FamilyID:      uuid.NewString(),
		UserID:        userID,
		Role:          role,
		CreatedAt:     now.Unix(),
		LastRotatedAt: now.Unix(),
		ExpiresAt:     now.Add(ttl).Unix(),
	}
}

// Expired reports whether the record's absolute expiry has passed.
func (r *Record) Expired(now time.Time) bool {
	return r.ExpiresAt <= now.Unix()
}
