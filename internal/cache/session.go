package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"leadcrm/internal/models"
	console "leadcrm/internal/utils/logger"

	"github.com/redis/go-redis/v9"
)

var log = console.New("SESSION-CACHE")

const keyPrefix = "leadcrm:session:"

// Earlier deployments wrote session state under these prefixes. Clear
// removes them too so sign-out never leaves a residual identity behind.
var legacyKeyPrefixes = []string{
	"crm:user:",
	"crm:cached-user:",
}

// Entry is the cached session snapshot: the resolved user (including
// their permission payload) plus the fetch timestamp that drives
// staleness.
type Entry struct {
	User        models.User `json:"user"`
	LastFetched time.Time   `json:"lastFetched"`
}

// SessionCache is a latency optimization only. It must never be the
// sole authorization source for a mutating operation; every
// state-changing route re-derives permissions from the database.
type SessionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	hits   atomic.Int64
	misses atomic.Int64

	now func() time.Time
}

// New builds a cache with the given staleness TTL.
func New(rdb *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{
		rdb: rdb,
		ttl: ttl,
		now: time.Now,
	}
}

func key(userID string) string {
	return keyPrefix + userID
}

// Get returns the cached user when present and fresh, counting a hit.
// Anything else (absent, unreadable, stale) is a miss and returns nil.
func (c *SessionCache) Get(ctx context.Context, userID string) (*models.User, bool) {
	data, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		log.Warn("unreadable session cache entry for %s: %v", userID, err)
		return nil, false
	}

	if c.staleAt(entry.LastFetched) {
		return nil, false
	}

	c.hits.Add(1)
	return &entry.User, true
}

// Put overwrites the cache entry unconditionally and counts a miss
// (a Put means the caller had to fetch from the source of truth).
func (c *SessionCache) Put(ctx context.Context, user *models.User) error {
	entry := Entry{
		User:        *user,
		LastFetched: c.now(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode session cache entry: %w", err)
	}

	// Keep the key around past the staleness TTL; freshness is judged
	// by LastFetched so a stale-but-present entry is observable.
	if err := c.rdb.Set(ctx, key(user.ID), data, c.ttl*2).Err(); err != nil {
		return fmt.Errorf("failed to write session cache entry: %w", err)
	}

	c.misses.Add(1)
	return nil
}

// IsStale reports whether the entry for userID is missing or older
// than the TTL.
func (c *SessionCache) IsStale(ctx context.Context, userID string) bool {
	data, err := c.rdb.Get(ctx, key(userID)).Bytes()
	if err != nil {
		return true
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return true
	}
	return c.staleAt(entry.LastFetched)
}

func (c *SessionCache) staleAt(lastFetched time.Time) bool {
	return lastFetched.IsZero() || c.now().Sub(lastFetched) > c.ttl
}

// Clear removes the session entry and every legacy key variant in a
// single pipeline. Sign-out must be total.
func (c *SessionCache) Clear(ctx context.Context, userID string) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, key(userID))
	for _, prefix := range legacyKeyPrefixes {
		pipe.Del(ctx, prefix+userID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear session cache for %s: %w", userID, err)
	}
	return nil
}

// Stats returns the running hit/miss counters.
func (c *SessionCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
