package ratelimiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/warbler/pkg/apperror"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckAndSetRateLimit(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	allowed, err := CheckAndSetRateLimit(ctx, rdb, 7, ScopeMessage, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = CheckAndSetRateLimit(ctx, rdb, 7, ScopeMessage, 5*time.Second)
	require.NoError(t, err)
	assert.False(t, allowed)

	// other users are independent
	allowed, err = CheckAndSetRateLimit(ctx, rdb, 8, ScopeMessage, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)

	mr.FastForward(6 * time.Second)
	allowed, err = CheckAndSetRateLimit(ctx, rdb, 7, ScopeMessage, 5*time.Second)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestEnforce(t *testing.T) {
	_, rdb := newRedis(t)
	ctx := context.Background()

	require.NoError(t, Enforce(ctx, rdb, 1, ScopeMessage, time.Minute))

	err := Enforce(ctx, rdb, 1, ScopeMessage, time.Minute)
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Greater(t, rlErr.RetryAfter, time.Duration(0))
	assert.Contains(t, rlErr.Error(), "too fast")
	assert.ErrorIs(t, err, apperror.ErrRateLimitExceeded)

	require.NoError(t, ClearRateLimit(ctx, rdb, 1, ScopeMessage))
	assert.NoError(t, Enforce(ctx, rdb, 1, ScopeMessage, time.Minute))
}

func TestNilClientDisablesLimit(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		assert.NoError(t, Enforce(ctx, nil, 1, ScopeMessage, time.Minute))
	}
	ttl, err := GetRateLimitTTL(ctx, nil, 1, ScopeMessage)
	assert.NoError(t, err)
	assert.Zero(t, ttl)
}
