package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundmap/internal/kv"
)

func newRedisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(kv.NewRedisStore(client), time.Hour), mr
}

func TestSessionRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	payload := Payload{UserID: "user-1", Username: "ada", Email: "ada@example.com"}
	token, err := store.Create(ctx, payload)
	require.NoError(t, err)
	assert.Len(t, token, 64, "32 random bytes hex encoded")

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, payload, *got)
}

func TestSessionTokensAreUnique(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := store.Create(ctx, Payload{UserID: "user-1"})
		require.NoError(t, err)
		require.False(t, seen[token], "token collision")
		seen[token] = true
	}
}

func TestSessionExpires(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, Payload{UserID: "user-1"})
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionDelete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, Payload{UserID: "user-1"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, token))
	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing token is a no-op.
	require.NoError(t, store.Delete(ctx, token))
}

func TestSessionUnknownTokenIsAnonymous(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionCorruptPayloadIsAnonymous(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	token, err := store.Create(ctx, Payload{UserID: "user-1"})
	require.NoError(t, err)

	// Corrupt the stored JSON behind the store's back.
	require.NoError(t, mr.Set("session:"+token, "{not json"))

	got, err := store.Get(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, got, "corrupt session payload reads as logged out")
}
