package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	_, ok := c.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryWithClock(func() time.Time { return now })

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	now = now.Add(59 * time.Second)
	_, ok := c.Get(ctx, "k")
	assert.True(t, ok, "entry within ttl")

	now = now.Add(2 * time.Second)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry past ttl")
}

func TestMemory_Invalidate(t *testing.T) {
	ctx := context.Background()
	c := NewMemory()

	require.NoError(t, c.Set(ctx, "eligibility:a", "1", time.Minute))
	require.NoError(t, c.Set(ctx, "eligibility:b", "2", time.Minute))
	require.NoError(t, c.Set(ctx, "other:c", "3", time.Minute))

	require.NoError(t, c.Invalidate(ctx, "eligibility:"))

	_, ok := c.Get(ctx, "eligibility:a")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "eligibility:b")
	assert.False(t, ok)
	_, ok = c.Get(ctx, "other:c")
	assert.True(t, ok)
}
