package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedStore layers a short-TTL redis cache over ActiveForClass, the one
// query clients poll. Writes pass through and drop the cached entry, so a
// stale hit can only outlive a transition by the TTL. Redis trouble degrades
// to the underlying store.
type CachedStore struct {
	Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps a store with an active-session cache.
func NewCachedStore(store Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = 3 * time.Second
	}
	return &CachedStore{Store: store, rdb: rdb, ttl: ttl, logger: logger}
}

func activeKey(classID string) string { return "rollcall:active:" + classID }

// ActiveForClass serves cached lookups of the open session for a class.
func (c *CachedStore) ActiveForClass(ctx context.Context, classID string) (Session, bool, error) {
	key := activeKey(classID)
	if raw, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if raw == "" {
			return Session{}, false, nil
		}
		var sess Session
		if err := json.Unmarshal([]byte(raw), &sess); err == nil {
			return sess, true, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("active-session cache read failed", zap.Error(err))
	}

	sess, ok, err := c.Store.ActiveForClass(ctx, classID)
	if err != nil {
		return Session{}, false, err
	}
	payload := ""
	if ok {
		if raw, err := json.Marshal(sess); err == nil {
			payload = string(raw)
		}
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("active-session cache write failed", zap.Error(err))
	}
	return sess, ok, nil
}

// CreateOpen passes through and invalidates the class's cached entry.
func (c *CachedStore) CreateOpen(ctx context.Context, candidate Session) (Session, bool, error) {
	stored, created, err := c.Store.CreateOpen(ctx, candidate)
	if err == nil {
		c.invalidate(ctx, stored.ClassID)
	}
	return stored, created, err
}

// Close passes through and invalidates the class's cached entry.
func (c *CachedStore) Close(ctx context.Context, id string, closedAt time.Time) (Session, error) {
	closed, err := c.Store.Close(ctx, id, closedAt)
	if err == nil {
		c.invalidate(ctx, closed.ClassID)
	}
	return closed, err
}

func (c *CachedStore) invalidate(ctx context.Context, classID string) {
	if err := c.rdb.Del(ctx, activeKey(classID)).Err(); err != nil {
		c.logger.Warn("active-session cache invalidate failed", zap.Error(err))
	}
}
