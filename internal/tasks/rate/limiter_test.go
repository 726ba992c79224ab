package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiter(t *testing.T, max int) *SlidingWindowLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSlidingWindowLimiter(rdb, Config{
		Name:  "login",
		Limit: Limit{Window: time.Minute, Max: max},
	})
}

func TestAllowUnderLimit(t *testing.T) {
	l := newLimiter(t, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestDenyOverLimit(t *testing.T) {
	l := newLimiter(t, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIdentifiersAreIndependent(t *testing.T) {
	l := newLimiter(t, 1)
	ctx := context.Background()

	ok, err := l.Allow(ctx, "10.0.0.1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.Allow(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.True(t, ok)
}
