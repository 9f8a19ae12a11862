package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to TEST_REDIS_ADDR and skips when it is unset.
func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	client, err := NewRedisClient(context.Background(), Options{Addr: addr, DB: 15})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store := NewSessionStore(client)
	store.prefix = "test-session:" + uuid.NewString() + ":"
	return store
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()
	sid := uuid.NewString()

	_, err := store.Owner(ctx, sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, sid, user, time.Minute))

	owner, err := store.Owner(ctx, sid)
	require.NoError(t, err)
	assert.Equal(t, user, owner)

	assert.ErrorIs(t, store.Revoke(ctx, sid, uuid.New()), ErrSessionNotFound, "only the owner revokes")
	require.NoError(t, store.Revoke(ctx, sid, user))

	_, err = store.Owner(ctx, sid)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_Expiry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sid := uuid.NewString()

	require.NoError(t, store.Save(ctx, sid, uuid.New(), 100*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, err := store.Owner(ctx, sid)
		return err == ErrSessionNotFound
	}, 2*time.Second, 50*time.Millisecond)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, Options{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
