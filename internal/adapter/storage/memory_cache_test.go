package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_Contract(t *testing.T) {
	runCacheContract(t, NewMemoryCache(), "")
}

func TestMemoryCache_IdempotencyExpires(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := cache.SetIdempotency(ctx, "sale:r1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = cache.SetIdempotency(ctx, "sale:r1")
	assert.False(t, ok)

	now = now.Add(idempotencyKeyTTL + time.Second)
	ok, _ = cache.SetIdempotency(ctx, "sale:r1")
	assert.True(t, ok)
}
