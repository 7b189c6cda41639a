// Package scanhold parks a scanned session payload for an anonymous
// caller while they authenticate. The hold lives in Redis under a random
// token with a short TTL; after login the client trades the token back
// for the payload and the scan is replayed. When no Redis client is
// available the store is disabled and anonymous scans simply get an
// auth-required answer without a replay token.
package scanhold

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a token is unknown, expired or already
// redeemed.
var ErrNotFound = errors.New("pending scan not found")

const keyPrefix = "scanhold:"

// Store holds pending scan payloads keyed by opaque tokens.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New returns a Store over the given client. A nil client yields a
// disabled store; all methods remain safe to call.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Enabled reports whether holds can be stored.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

// Hold saves a payload and returns the token the client must present
// after authenticating.
func (s *Store) Hold(ctx context.Context, payload string) (string, error) {
	if !s.Enabled() {
		return "", errors.New("scan hold store disabled")
	}
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	if err := s.rdb.Set(ctx, keyPrefix+token, payload, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Take redeems a token exactly once and returns the held payload. GETDEL
// makes redemption atomic, so two replays of the same token cannot both
// succeed.
func (s *Store) Take(ctx context.Context, token string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotFound
	}
	payload, err := s.rdb.GetDel(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return payload, nil
}
