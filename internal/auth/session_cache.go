package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// SessionCache stores verified token identities in Redis so repeated
// requests with the same bearer token skip signature verification. Keys
// are spread over the session-node ring. A nil Redis client disables the
// cache without disabling auth.
type SessionCache struct {
	redis radix.Client
	ring  *HashRing
	ttl   time.Duration
}

// NewSessionCache builds the cache.
func NewSessionCache(redis radix.Client, ring *HashRing, ttl time.Duration) *SessionCache {
	if ring == nil {
		ring = NewHashRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &SessionCache{redis: redis, ring: ring, ttl: ttl}
}

func (c *SessionCache) key(token string) string {
	sum := sha1.Sum([]byte(token))
	return fmt.Sprintf("session:%s:%s", c.ring.Node(token), hex.EncodeToString(sum[:]))
}

// Get returns the cached identity for token, if any.
func (c *SessionCache) Get(ctx context.Context, token string) (*Identity, bool, error) {
	if c.redis == nil {
		return nil, false, nil
	}
	var raw string
	if err := c.redis.Do(radix.Cmd(&raw, "GET", c.key(token))); err != nil {
		return nil, false, err
	}
	if raw == "" {
		return nil, false, nil
	}
	var id Identity
	if err := json.Unmarshal([]byte(raw), &id); err != nil {
		// Corrupt entry: drop it and fall back to full verification.
		_ = c.redis.Do(radix.Cmd(nil, "DEL", c.key(token)))
		return nil, false, nil
	}
	return &id, true, nil
}

// Set caches a verified identity. TTL stays below token lifetime so a
// cached entry can never outlive its token by much.
func (c *SessionCache) Set(ctx context.Context, token string, id *Identity) error {
	if c.redis == nil || id == nil {
		return nil
	}
	body, _ := json.Marshal(id)
	return c.redis.Do(radix.FlatCmd(nil, "SETEX", c.key(token), int64(c.ttl/time.Second), body))
}
