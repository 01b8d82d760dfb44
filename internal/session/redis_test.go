package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go401-gateway/internal/identity"
)

func newTestRedisStore(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStoreWithClient(client, ttl, zap.NewNop()), mr
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	want := identity.New(identity.Params{
		UserID:       "u7",
		Email:        "Admin@Example.com",
		Role:         "plan_admin",
		PlanIDs:      []string{"p2", "p1"},
		Permissions:  []string{identity.CapViewParticipants},
		IsSuperAdmin: false,
	})
	require.NoError(t, store.Set(ctx, "s1", want))
	assert.True(t, mr.Exists("session:identity:s1"))

	got, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.Params(), got.Params())
	assert.Equal(t, "admin@example.com", got.Email())
}

func TestRedisStore_Clear(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Hour)

	require.NoError(t, store.Set(ctx, "s1", testIdentity(1)))
	require.NoError(t, store.Clear(ctx, "s1"))
	assert.False(t, mr.Exists("session:identity:s1"))

	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_ExpiryAndRefresh(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestRedisStore(t, time.Minute)

	require.NoError(t, store.Set(ctx, "s1", testIdentity(1)))

	mr.FastForward(40 * time.Second)
	_, ok, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("session:identity:s1"))

	mr.FastForward(61 * time.Second)
	_, ok, err = store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_BackendFailure(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStoreWithClient(client, time.Minute, zap.NewNop())
	mr.Close()

	_, _, err = store.Get(ctx, "s1")
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "s1", testIdentity(1)))
}

func TestRedisStore_RejectsEmptySessionID(t *testing.T) {
	store, _ := newTestRedisStore(t, time.Minute)
	_, _, err := store.Get(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
