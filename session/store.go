package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrTokenMismatch is returned by Rotate when the expected token ID is no
// longer the family's current one: either a replayed stale token or a lost
// rotation race. The caller distinguishes the two.
var ErrTokenMismatch = errors.New("refresh token id mismatch")

// ErrFamilyRevoked is returned when the target family has been revoked.
var ErrFamilyRevoked = errors.New("session family revoked")

// ErrFamilyNotFound is returned when the target family does not exist.
var ErrFamilyNotFound = errors.New("session family not found")

// ErrFamilyExpired is returned when the target family's absolute expiry has passed.
var ErrFamilyExpired = errors.New("session family expired")

// ErrRedisUnavailable wraps transport-level Redis failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

const (
	rotateStatusNotFound int64 = 0
	rotateStatusExpired  int64 = 1
	rotateStatusRevoked  int64 = 2
	rotateStatusMismatch int64 = 3
	rotateStatusRotated  int64 = 4
)

// rotateScript is the single compare-and-swap of the rotation protocol.
// Everything between reading the current token ID and writing the next one
// happens inside Redis, so concurrent refreshes with the same expected
// token produce exactly one winner.
const rotateScript = `
local key = KEYS[1]
local expected = ARGV[1]
local next_id = ARGV[2]
local now_unix = tonumber(ARGV[3])
local user_prefix = ARGV[4]
local family_id = ARGV[5]

local fields = redis.call("HMGET", key, "cur", "revoked", "exp", "user")
if not fields[1] then
  return {0}
end

if tonumber(fields[3]) <= now_unix then
  redis.call("DEL", key)
  redis.call("SREM", user_prefix .. fields[4], family_id)
  return {1}
end

if fields[2] == "1" then
  return {2}
end

if fields[1] ~= expected then
  return {3}
end

redis.call("HSET", key, "cur", next_id, "rotated", now_unix)
return {4, redis.call("HGETALL", key)}
`

var rotateLua = redis.NewScript(rotateScript)

// revokeScript flags an existing family without touching its TTL. The
// record must outlive revocation so later refreshes surface "revoked"
// rather than "not found".
const revokeScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "revoked", "1")
return 1
`

var revokeLua = redis.NewScript(revokeScript)

// Store is a Redis-backed session-family store handling persistence,
// expiry, revocation, and atomic refresh-token rotation.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a [Store] backed by the given Redis client. prefix sets
// the key namespace.
func NewStore(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = "ac"
	}
	return &Store{redis: client, prefix: prefix}
}

func (s *Store) familyKey(familyID string) string {
	return s.prefix + ":f:" + familyID
}

func (s *Store) userPrefix() string {
	return s.prefix + ":u:"
}

func (s *Store) userKey(userID string) string {
	return s.userPrefix() + userID
}

// Save persists a new family record with the given TTL and indexes it
// under its user.
//
//	Performance: one MULTI/EXEC (HSET + PEXPIRE + SADD).
func (s *Store) Save(ctx context.Context, rec *Record, ttl time.Duration) error {
	if rec == nil || rec.FamilyID == "" {
		return errors.New("nil or incomplete session record")
	}

	key := s.familyKey(rec.FamilyID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, recordToFields(rec))
		pipe.PExpire(ctx, key, ttl)
		pipe.SAdd(ctx, s.userKey(rec.UserID), rec.FamilyID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Lookup fetches a family record. Expired records are deleted on read and
// reported as not found.
func (s *Store) Lookup(ctx context.Context, familyID string) (*Record, error) {
	fields, err := s.redis.HGetAll(ctx, s.familyKey(familyID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, errors.Join(redis.Nil, ErrFamilyNotFound)
	}

	rec, err := recordFromFields(familyID, fields)
	if err != nil {
		return nil, err
	}

	if rec.Expired(time.Now()) {
		if err := s.dropFamily(ctx, rec.UserID, familyID); err != nil {
			return nil, err
		}
		return nil, errors.Join(redis.Nil, ErrFamilyExpired)
	}

	return rec, nil
}

// Rotate atomically replaces the family's current token ID, but only if it
// still equals expectedTokenID and the family is neither revoked nor
// expired. Exactly one concurrent caller wins; the rest get
// [ErrTokenMismatch].
//
//	Performance: one Lua EVALSHA.
func (s *Store) Rotate(ctx context.Context, familyID, expectedTokenID, nextTokenID string) (*Record, error) {
	result, err := rotateLua.Run(
		ctx,
		s.redis,
		[]string{s.familyKey(familyID)},
		expectedTokenID,
		nextTokenID,
		time.Now().Unix(),
		s.userPrefix(),
		familyID,
	).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	parts, ok := result.([]interface{})
	if !ok || len(parts) == 0 {
		return nil, fmt.Errorf("%w: invalid rotate script response", ErrRedisUnavailable)
	}
	code, ok := parts[0].(int64)
	if !ok {
		return nil, fmt.Errorf("%w: invalid rotate script status", ErrRedisUnavailable)
	}

	switch code {
	case rotateStatusNotFound:
		return nil, errors.Join(redis.Nil, ErrFamilyNotFound)
	case rotateStatusExpired:
		return nil, errors.Join(redis.Nil, ErrFamilyExpired)
	case rotateStatusRevoked:
		return nil, ErrFamilyRevoked
	case rotateStatusMismatch:
		return nil, ErrTokenMismatch
	case rotateStatusRotated:
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: missing rotated record payload", ErrRedisUnavailable)
		}
		return recordFromScriptReply(familyID, parts[1])
	default:
		return nil, fmt.Errorf("%w: unknown rotate script status", ErrRedisUnavailable)
	}
}

// Revoke marks a family revoked. Idempotent: revoking a revoked or unknown
// family succeeds. The record keeps its TTL so the revoked state stays
// observable until natural expiry.
func (s *Store) Revoke(ctx context.Context, familyID string) error {
	if err := revokeLua.Run(ctx, s.redis, []string{s.familyKey(familyID)}).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RevokeAllForUser revokes every tracked family of a user. Used for
// password changes and "log out everywhere".
func (s *Store) RevokeAllForUser(ctx context.Context, userID string) error {
	familyIDs, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	for _, familyID := range familyIDs {
		if err := s.Revoke(ctx, familyID); err != nil {
			return err
		}
	}
	return nil
}

// ActiveFamilies returns the user's live (unexpired, unrevoked) family
// records. Stale index entries are pruned as a side effect.
func (s *Store) ActiveFamilies(ctx context.Context, userID string) ([]*Record, error) {
	familyIDs, err := s.redis.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	records := make([]*Record, 0, len(familyIDs))
	for _, familyID := range familyIDs {
		rec, err := s.Lookup(ctx, familyID)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				_ = s.redis.SRem(ctx, s.userKey(userID), familyID).Err()
				continue
			}
			return nil, err
		}
		if rec.Revoked {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func (s *Store) dropFamily(ctx context.Context, userID, familyID string) error {
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.familyKey(familyID))
		pipe.SRem(ctx, s.userKey(userID), familyID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func recordToFields(rec *Record) map[string]interface{} {
	revoked := "0"
	if rec.Revoked {
		revoked = "1"
	}
	return map[string]interface{}{
		"user":    rec.UserID,
		"role":    rec.Role,
		"cur":     rec.CurrentTokenID,
		"created": strconv.FormatInt(rec.CreatedAt, 10),
		"rotated": strconv.FormatInt(rec.LastRotatedAt, 10),
		"exp":     strconv.FormatInt(rec.ExpiresAt, 10),
		"revoked": revoked,
	}
}

func recordFromFields(familyID string, fields map[string]string) (*Record, error) {
	if fields["user"] == "" || fields["cur"] == "" {
		return nil, fmt.Errorf("%w: corrupt session record", ErrRedisUnavailable)
	}

	created, err := strconv.ParseInt(fields["created"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt session record", ErrRedisUnavailable)
	}
	rotated, err := strconv.ParseInt(fields["rotated"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt session record", ErrRedisUnavailable)
	}
	exp, err := strconv.ParseInt(fields["exp"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt session record", ErrRedisUnavailable)
	}

	return &Record{
		FamilyID:       familyID,
		UserID:         fields["user"],
		Role:           fields["role"],
		CurrentTokenID: fields["cur"],
		CreatedAt:      created,
		LastRotatedAt:  rotated,
		ExpiresAt:      exp,
		Revoked:        fields["revoked"] == "1",
	}, nil
}

func recordFromScriptReply(familyID string, reply interface{}) (*Record, error) {
	flat, ok := reply.([]interface{})
	if !ok || len(flat)%2 != 0 {
		return nil, fmt.Errorf("%w: invalid rotated record payload", ErrRedisUnavailable)
	}

	fields := make(map[string]string, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		k, kok := flat[i].(string)
		v, vok := flat[i+1].(string)
		if !kok || !vok {
			return nil, fmt.Errorf("%w: invalid rotated record payload", ErrRedisUnavailable)
		}
		fields[k] = v
	}

	return recordFromFields(familyID, fields)
}
