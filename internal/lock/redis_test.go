package lock

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/bracket-scheduler/internal/bracket"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T, wait time.Duration) (*miniredis.Miniredis, *RedisLocker) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb, err := NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	return mr, NewRedisLocker(rdb, "staging", wait, 15*time.Second, zap.NewNop())
}

func TestKeyBuilder(t *testing.T) {
	tests := []struct {
		environment string
		want        string
	}{
		{"development", "development:bracket:abc:lock"},
		{"staging", "staging:bracket:abc:lock"},
		{"production", "production:bracket:abc:lock"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			assert.Equal(t, tt.want, NewKeyBuilder(tt.environment).KeyBracketLock("abc"))
		})
	}
}

func TestNewRedisClient_InvalidURL(t *testing.T) {
	rdb, err := NewRedisClient(context.Background(), "invalid://url")
	assert.Error(t, err)
	assert.Nil(t, rdb)
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	mr, l := setupTestRedis(t, 100*time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, mr.Exists("staging:bracket:abc:lock"))
	assert.Equal(t, 15*time.Second, mr.TTL("staging:bracket:abc:lock"))

	_, err = l.Acquire(ctx, "abc")
	assert.ErrorIs(t, err, bracket.ErrLockContention)

	release()
	assert.False(t, mr.Exists("staging:bracket:abc:lock"))

	again, err := l.Acquire(ctx, "abc")
	require.NoError(t, err)
	again()
}

func TestRedisLocker_ReleaseKeepsForeignLock(t *testing.T) {
	mr, l := setupTestRedis(t, 100*time.Millisecond)

	release, err := l.Acquire(context.Background(), "abc")
	require.NoError(t, err)

	// Our lock expired and another instance took it over.
	mr.FastForward(16 * time.Second)
	require.NoError(t, mr.Set("staging:bracket:abc:lock", "someone-else"))

	release()
	got, err := mr.Get("staging:bracket:abc:lock")
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestRedisLocker_ExpiredLockCanBeTaken(t *testing.T) {
	mr, l := setupTestRedis(t, 100*time.Millisecond)
	ctx := context.Background()

	_, err := l.Acquire(ctx, "abc")
	require.NoError(t, err)

	mr.FastForward(16 * time.Second)

	release, err := l.Acquire(ctx, "abc")
	require.NoError(t, err)
	release()
}
