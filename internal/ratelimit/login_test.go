package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/musiccompanion/apiserver/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterMax(t *testing.T) {
	throttle, mr := setupThrottle(t, 3, time.Minute)
	ctx := context.Background()
	key := Key(" Ana@Example.com ", "10.0.0.1")

	for i := 0; i < 3; i++ {
		ok, _, err := throttle.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i+1)
	}
	ok, retry, err := throttle.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Greater(t, retry, time.Duration(0))
	assert.LessOrEqual(t, retry, time.Minute)

	// Other clients are unaffected.
	ok, _, err = throttle.Allow(ctx, Key("ana@example.com", "10.0.0.2"))
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(time.Minute + time.Second)
	ok, _, err = throttle.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_WindowNotExtended(t *testing.T) {
	throttle, mr := setupThrottle(t, 10, time.Minute)
	ctx := context.Background()
	key := Key("bo@example.com", "::1")

	_, _, err := throttle.Allow(ctx, key)
	require.NoError(t, err)
	mr.FastForward(40 * time.Second)
	_, _, err = throttle.Allow(ctx, key)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Second, mr.TTL(keyPrefix+":"+key))
}

func TestLoginThrottle_Reset(t *testing.T) {
	throttle, _ := setupThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, _, _ := throttle.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _, _ = throttle.Allow(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, throttle.Reset(ctx, "k"))
	ok, _, _ = throttle.Allow(ctx, "k")
	assert.True(t, ok)
}

func TestLoginThrottle_RedisDownFailsOpen(t *testing.T) {
	throttle, mr := setupThrottle(t, 1, time.Minute)
	mr.Close()

	ok, _, err := throttle.Allow(context.Background(), "k")
	assert.Error(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_Nil(t *testing.T) {
	var throttle *LoginThrottle
	ok, _, err := throttle.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, throttle.Reset(context.Background(), "k"))
	assert.Nil(t, NewLoginThrottle(nil, 5, time.Minute))
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)

	mr := miniredis.RunT(t)
	client, err = NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	require.NotNil(t, client)
	_ = client.Close()
}
