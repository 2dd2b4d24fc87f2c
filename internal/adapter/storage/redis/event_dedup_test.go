package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDedup_CheckAndSet_NewEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedup(client)

	ok, err := store.CheckAndSet(context.Background(), "rental-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first delivery should be accepted")
}

func TestEventDedup_CheckAndSet_DuplicateEvent(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedup(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "rental-abc", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.CheckAndSet(ctx, "rental-abc", 5*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "redelivery should be rejected")
}

func TestEventDedup_CheckAndSet_DistinctKeys(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedup(client)
	ctx := context.Background()

	ok1, err := store.CheckAndSet(ctx, "rental-a", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok1)

	ok2, err := store.CheckAndSet(ctx, "rental-b", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok2, "different event should not collide")
}

func TestEventDedup_Clear(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedup(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "rental-retry", 5*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, store.Clear(ctx, "rental-retry"))

	ok, err = store.CheckAndSet(ctx, "rental-retry", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "cleared key should be accepted again")
}

func TestEventDedup_CheckAndSet_ExpiredKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	store := NewEventDedup(client)
	ctx := context.Background()

	ok, err := store.CheckAndSet(ctx, "rental-expire", 1*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	s.FastForward(2 * time.Second)

	ok, err = store.CheckAndSet(ctx, "rental-expire", 1*time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired key should be accepted again")
}
