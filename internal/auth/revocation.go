package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers logged-out tokens until they expire on their
// own. JWTs are otherwise stateless, so logout needs this shared list.
type RevocationList interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	Revoked(ctx context.Context, token string) (bool, error)
}

func revocationKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "rollcall:revoked:" + hex.EncodeToString(sum[:])
}

// RedisRevocationList keeps revoked tokens in redis with a TTL matching the
// token's remaining lifetime, so entries clean themselves up.
type RedisRevocationList struct {
	rdb *redis.Client
}

// NewRedisRevocationList builds a redis-backed list.
func NewRedisRevocationList(rdb *redis.Client) *RedisRevocationList {
	return &RedisRevocationList{rdb: rdb}
}

// Revoke marks the token revoked for ttl.
func (l *RedisRevocationList) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // already expired
	}
	return l.rdb.Set(ctx, revocationKey(token), "1", ttl).Err()
}

// Revoked reports whether the token was logged out.
func (l *RedisRevocationList) Revoked(ctx context.Context, token string) (bool, error) {
	n, err := l.rdb.Exists(ctx, revocationKey(token)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationList is the single-process fallback for the memory
// backend and for tests.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryRevocationList builds an in-memory list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]time.Time)}
}

// Revoke marks the token revoked for ttl.
func (l *MemoryRevocationList) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[revocationKey(token)] = time.Now().Add(ttl)
	return nil
}

// Revoked reports whether the token was logged out, dropping expired
// entries as it sees them.
func (l *MemoryRevocationList) Revoked(_ context.Context, token string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := revocationKey(token)
	until, ok := l.revoked[key]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(l.revoked, key)
		return false, nil
	}
	return true, nil
}
