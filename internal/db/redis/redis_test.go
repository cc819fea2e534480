package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, 10*time.Second)
	cb.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		assert.True(t, cb.AllowRequest())
	}
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.False(t, cb.AllowRequest())

	now = now.Add(11 * time.Second)
	assert.True(t, cb.AllowRequest())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State(), "a failed trial reopens the circuit")

	now = now.Add(11 * time.Second)
	require.True(t, cb.AllowRequest())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, "closed", cb.State().String())
}

func TestSnapshotCacheFailsFastWhenOpen(t *testing.T) {
	// nothing listens on this port; every command fails
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewSnapshotCache(client, time.Minute, "monopoly:events", zap.NewNop().Sugar())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cache.SaveSnapshot(ctx, "g1", map[string]int{"turn": i})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrCircuitOpen))
	}
	assert.Equal(t, CircuitOpen, cache.BreakerState())
	assert.ErrorIs(t, cache.DeleteSnapshot(ctx, "g1"), ErrCircuitOpen)
	assert.ErrorIs(t, cache.Publish(ctx, "hello"), ErrCircuitOpen)

	var out map[string]int
	assert.ErrorIs(t, cache.LoadSnapshot(ctx, "g1", &out), ErrCircuitOpen)
	assert.ErrorIs(t, cache.Ping(ctx), ErrCircuitOpen)
}

func TestSnapshotKey(t *testing.T) {
	assert.Equal(t, "game:abc:snapshot", snapshotKey("abc"))
}
