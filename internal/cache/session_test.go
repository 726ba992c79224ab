package cache

import (
	"context"
	"testing"
	"time"

	"leadcrm/internal/models"
	"leadcrm/internal/permissions"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*SessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(rdb, 15*time.Minute), mr
}

func testUser(id string) *models.User {
	return &models.User{
		Base:     models.Base{ID: id},
		Email:    id + "@example.com",
		Role:     permissions.RoleSeller,
		IsActive: true,
	}
}

func TestEmptyCacheIsStale(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	assert.True(t, c.IsStale(ctx, "user-1"))

	user, ok := c.Get(ctx, "user-1")
	assert.False(t, ok)
	assert.Nil(t, user)
}

func TestPutThenGetIsHit(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testUser("user-1")))
	assert.False(t, c.IsStale(ctx, "user-1"))

	user, ok := c.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, permissions.RoleSeller, user.Role)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses) // the Put counted the fetch
}

func TestEntryGoesStaleAfterTTL(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testUser("user-1")))

	// 16 minutes later the entry still exists but must read as stale.
	base := time.Now()
	c.now = func() time.Time { return base.Add(16 * time.Minute) }

	assert.True(t, c.IsStale(ctx, "user-1"))
	user, ok := c.Get(ctx, "user-1")
	assert.False(t, ok)
	assert.Nil(t, user)

	hits, _ := c.Stats()
	assert.Equal(t, int64(0), hits)
}

func TestPutOverwritesUnconditionally(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	stale := testUser("user-1")
	stale.Role = permissions.RoleUser
	require.NoError(t, c.Put(ctx, stale))

	fresh := testUser("user-1")
	fresh.Role = permissions.RoleManager
	require.NoError(t, c.Put(ctx, fresh))

	user, ok := c.Get(ctx, "user-1")
	require.True(t, ok)
	assert.Equal(t, permissions.RoleManager, user.Role)

	_, misses := c.Stats()
	assert.Equal(t, int64(2), misses)
}

func TestClearIsTotal(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testUser("user-1")))

	// Simulate residue under the legacy key names.
	for _, prefix := range legacyKeyPrefixes {
		require.NoError(t, mr.Set(prefix+"user-1", "stale-identity"))
	}

	require.NoError(t, c.Clear(ctx, "user-1"))

	user, ok := c.Get(ctx, "user-1")
	assert.False(t, ok)
	assert.Nil(t, user)
	assert.True(t, c.IsStale(ctx, "user-1"))

	for _, prefix := range legacyKeyPrefixes {
		assert.False(t, mr.Exists(prefix+"user-1"))
	}
}

func TestClearDoesNotLeakAcrossUsers(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testUser("user-1")))
	require.NoError(t, c.Put(ctx, testUser("user-2")))
	require.NoError(t, c.Clear(ctx, "user-1"))

	_, ok := c.Get(ctx, "user-1")
	assert.False(t, ok)

	other, ok := c.Get(ctx, "user-2")
	require.True(t, ok)
	assert.Equal(t, "user-2", other.ID)
}
