package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestFixedWindowLimiter_Check(t *testing.T) {
	redisClient, _ := setupTestRedis(t)

	limiter := NewFixedWindowLimiter(redisClient, Config{Enabled: true, Max: 3, Window: time.Hour}, nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		identity    string
		attempts    int
		wantAllowed bool
	}{
		{"first attempt allowed", IdentityKey("203.0.113.1"), 1, true},
		{"at limit allowed", IdentityKey("203.0.113.2"), 3, true},
		{"over limit blocked", IdentityKey("203.0.113.3"), 4, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result *Result
			var err error
			for i := 0; i < tt.attempts; i++ {
				result, err = limiter.Check(ctx, tt.identity)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantAllowed, result.Allowed)
			assert.Equal(t, tt.attempts, result.CurrentCount)
			assert.Equal(t, 3, result.MaxAllowed)
			if !tt.wantAllowed {
				assert.NotEmpty(t, result.Message)
			}
		})
	}
}

func TestFixedWindowLimiter_WindowExpiry(t *testing.T) {
	redisClient, mr := setupTestRedis(t)

	limiter := NewFixedWindowLimiter(redisClient, Config{Enabled: true, Max: 3, Window: time.Hour}, nil)
	ctx := context.Background()
	identity := IdentityKey("203.0.113.9")

	for i := 0; i < 4; i++ {
		result, err := limiter.Check(ctx, identity)
		require.NoError(t, err)
		if i < 3 {
			assert.True(t, result.Allowed)
		} else {
			assert.False(t, result.Allowed)
		}
	}

	// After the window elapses the identity gets a fresh counter.
	mr.FastForward(time.Hour + time.Second)

	result, err := limiter.Check(ctx, identity)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.CurrentCount)
}

func TestFixedWindowLimiter_ConcurrentChecksDoNotOvercount(t *testing.T) {
	redisClient, _ := setupTestRedis(t)

	limiter := NewFixedWindowLimiter(redisClient, Config{Enabled: true, Max: 3, Window: time.Hour}, nil)
	ctx := context.Background()
	identity := IdentityKey("203.0.113.77")

	const parallel = 5
	results := make([]*Result, parallel)
	var wg sync.WaitGroup
	wg.Add(parallel)
	for i := 0; i < parallel; i++ {
		go func(i int) {
			defer wg.Done()
			r, err := limiter.Check(ctx, identity)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	allowed := 0
	for _, r := range results {
		if r.Allowed {
			allowed++
		}
	}
	assert.Equal(t, 3, allowed, "exactly max submissions should pass")

	count, err := redisClient.Get(ctx, keyPrefix+identity).Int()
	require.NoError(t, err)
	assert.Equal(t, parallel, count)
}

func TestFixedWindowLimiter_Disabled(t *testing.T) {
	redisClient, _ := setupTestRedis(t)

	limiter := NewFixedWindowLimiter(redisClient, Config{Enabled: false, Max: 3, Window: time.Hour}, nil)

	for i := 0; i < 10; i++ {
		result, err := limiter.Check(context.Background(), IdentityKey("203.0.113.8"))
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	}
}

func TestFixedWindowLimiter_FailsOpenOnRedisOutage(t *testing.T) {
	redisClient, mr := setupTestRedis(t)
	limiter := NewFixedWindowLimiter(redisClient, DefaultConfig(), nil)

	mr.Close()

	result, err := limiter.Check(context.Background(), IdentityKey("203.0.113.4"))
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, "rate limit check unavailable", result.Message)
}

func TestFixedWindowLimiter_Reset(t *testing.T) {
	redisClient, _ := setupTestRedis(t)

	limiter := NewFixedWindowLimiter(redisClient, DefaultConfig(), nil)
	ctx := context.Background()
	identity := IdentityKey("203.0.113.5")

	for i := 0; i < 4; i++ {
		limiter.Check(ctx, identity)
	}
	result, err := limiter.Check(ctx, identity)
	require.NoError(t, err)
	assert.False(t, result.Allowed)

	require.NoError(t, limiter.Reset(ctx, identity))

	result, err = limiter.Check(ctx, identity)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 1, result.CurrentCount)
}

func TestIdentityKey_StableAndOpaque(t *testing.T) {
	a := IdentityKey("198.51.100.23")
	b := IdentityKey("198.51.100.23")
	c := IdentityKey("198.51.100.24")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
	assert.NotContains(t, a, "198.51.100.23")
}
