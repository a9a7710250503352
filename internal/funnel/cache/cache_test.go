package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/storefront-funnel/internal/funnel/domain"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestViewDeduplicatorWindow(t *testing.T) {
	mr, client := newRedis(t)
	d := NewViewDeduplicator(client, time.Minute)
	ctx := context.Background()
	view := domain.ProductView{ProductID: 3, UserID: 8}

	first, err := d.FirstView(ctx, view)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = d.FirstView(ctx, view)
	require.NoError(t, err)
	assert.False(t, first)

	other, err := d.FirstView(ctx, domain.ProductView{ProductID: 4, UserID: 8})
	require.NoError(t, err)
	assert.True(t, other, "keys are per product")

	mr.FastForward(2 * time.Minute)
	first, err = d.FirstView(ctx, view)
	require.NoError(t, err)
	assert.True(t, first, "window expired")
}

func TestViewDeduplicatorPassThrough(t *testing.T) {
	_, client := newRedis(t)
	ctx := context.Background()

	disabled := NewViewDeduplicator(client, 0)
	for i := 0; i < 2; i++ {
		first, err := disabled.FirstView(ctx, domain.ProductView{ProductID: 1, UserID: 1})
		require.NoError(t, err)
		assert.True(t, first)
	}

	anonymous := NewViewDeduplicator(client, time.Minute)
	for i := 0; i < 2; i++ {
		first, err := anonymous.FirstView(ctx, domain.ProductView{ProductID: 1})
		require.NoError(t, err)
		assert.True(t, first, "no viewer identity, nothing to dedup on")
	}
}

func TestViewDeduplicatorReportsRedisErrors(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()

	_, err := NewViewDeduplicator(client, time.Minute).FirstView(context.Background(), domain.ProductView{ProductID: 1, ViewerKey: "s"})
	assert.Error(t, err)
}

func TestRateLimiter(t *testing.T) {
	_, client := newRedis(t)
	rl := NewRateLimiter(client, 2, time.Minute)
	ctx := context.Background()

	d1, err := rl.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d1.Allowed)
	assert.Equal(t, 1, d1.Remaining)

	d2, err := rl.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.True(t, d2.Allowed)

	d3, err := rl.Allow(ctx, "user:1")
	require.NoError(t, err)
	assert.False(t, d3.Allowed)
	assert.Equal(t, 0, d3.Remaining)

	other, err := rl.Allow(ctx, "user:2")
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}
