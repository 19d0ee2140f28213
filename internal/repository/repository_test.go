package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stolik/internal/domain"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisSlotCacheRoundTrip(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewRedisSlotCache(client, time.Minute)
	ctx := context.Background()

	_, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00", "19:30"}))

	slots, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"13:00", "19:30"}, slots)
}

func TestRedisSlotCacheStoresEmptyList(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewRedisSlotCache(client, time.Minute)
	ctx := context.Background()

	// Пустой список слотов тоже кэшируется, это не промах
	require.NoError(t, cache.SetBusySlots(ctx, 1, "2026-03-10", nil))

	slots, found, err := cache.GetBusySlots(ctx, 1, "2026-03-10")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, slots)
}

func TestRedisSlotCacheInvalidate(t *testing.T) {
	_, client := setupRedis(t)
	cache := NewRedisSlotCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))
	require.NoError(t, cache.Invalidate(ctx, 2, "2026-03-10"))

	_, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSlotCacheTTL(t *testing.T) {
	mr, client := setupRedis(t)
	cache := NewRedisSlotCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))

	mr.FastForward(2 * time.Minute)

	_, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemorySlotCache(t *testing.T) {
	cache := NewMemorySlotCache(time.Minute)
	ctx := context.Background()

	_, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))

	slots, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"13:00"}, slots)

	require.NoError(t, cache.Invalidate(ctx, 2, "2026-03-10"))
	_, found, _ = cache.GetBusySlots(ctx, 2, "2026-03-10")
	assert.False(t, found)
}

func TestMemorySlotCacheExpiry(t *testing.T) {
	cache := NewMemorySlotCache(time.Millisecond)
	ctx := context.Background()

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))
	time.Sleep(5 * time.Millisecond)

	_, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	assert.False(t, found)
}

type erroringCache struct {
	err   error
	calls int
}

func (c *erroringCache) GetBusySlots(context.Context, int64, string) ([]string, bool, error) {
	c.calls++
	return nil, false, c.err
}

func (c *erroringCache) SetBusySlots(context.Context, int64, string, []string) error {
	c.calls++
	return c.err
}

func (c *erroringCache) Invalidate(context.Context, int64, string) error {
	c.calls++
	return c.err
}

var _ domain.SlotCache = (*erroringCache)(nil)

func TestFailoverTripsToFallback(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	primary := &erroringCache{err: errors.New("redis down")}
	fallback := NewMemorySlotCache(time.Minute)
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))

	// Сработал fallback: значение читается без обращения к primary
	callsAfterSet := primary.calls
	slots, found, err := cache.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"13:00"}, slots)
	assert.Equal(t, callsAfterSet, primary.calls)
}

func TestFailoverUsesPrimaryWhenHealthy(t *testing.T) {
	logger := zerolog.New(os.Stdout)
	_, client := setupRedis(t)
	primary := NewRedisSlotCache(client, time.Minute)
	fallback := NewMemorySlotCache(time.Minute)
	cache := NewFailoverSlotCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, cache.SetBusySlots(ctx, 2, "2026-03-10", []string{"13:00"}))

	slots, found, err := primary.GetBusySlots(ctx, 2, "2026-03-10")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"13:00"}, slots)
}
