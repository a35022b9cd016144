package presence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	return openRedisStore(t, mr, "node-1"), mr
}

func openRedisStore(t *testing.T, mr *miniredis.Miniredis, instance string) *RedisStore {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store, err := NewRedisStoreFromClient(context.Background(), client, "test:presence", instance)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStores(t *testing.T) {
	t.Parallel()

	redisStore, _ := newMiniredisStore(t)
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  redisStore,
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			n, err := store.Count(ctx, "lobby")
			require.NoError(t, err)
			assert.Zero(t, n)

			require.NoError(t, store.Add(ctx, "lobby", "c-1"))
			require.NoError(t, store.Add(ctx, "lobby", "c-1"))
			n, err = store.Count(ctx, "lobby")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			require.NoError(t, store.Add(ctx, "lobby", "c-2"))
			require.NoError(t, store.Add(ctx, "other", "c-1"))
			n, err = store.Count(ctx, "lobby")
			require.NoError(t, err)
			assert.Equal(t, int64(2), n)

			require.NoError(t, store.Remove(ctx, "lobby", "c-1"))
			require.NoError(t, store.Remove(ctx, "lobby", "c-9"))
			require.NoError(t, store.Remove(ctx, "empty", "c-1"))
			n, err = store.Count(ctx, "lobby")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			n, err = store.Count(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
		})
	}
}

func TestRedisStore_KeyLayout(t *testing.T) {
	t.Parallel()
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.Add(context.Background(), "lobby", "c-1"))

	members, err := mr.Members("test:presence:room:lobby:members")
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1"}, members)
}

func TestRedisStore_RestartDropsStaleMembers(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	crashed, mr := newMiniredisStore(t)
	peer := openRedisStore(t, mr, "node-2")

	require.NoError(t, crashed.Add(ctx, "A", "conn-1"))
	require.NoError(t, crashed.Add(ctx, "B", "conn-1"))
	require.NoError(t, peer.Add(ctx, "A", "conn-2"))

	restarted := openRedisStore(t, mr, "node-1")

	n, err := restarted.Count(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = restarted.Count(ctx, "B")
	require.NoError(t, err)
	assert.Zero(t, n)

	members, err := mr.Members("test:presence:room:A:members")
	require.NoError(t, err)
	assert.Equal(t, []string{"conn-2"}, members)
	assert.False(t, mr.Exists("test:presence:instance:node-1:members"))
	assert.True(t, mr.Exists("test:presence:instance:node-2:members"))
}

func TestRedisStore_RemoveClearsInstanceIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store, mr := newMiniredisStore(t)

	require.NoError(t, store.Add(ctx, "A", "conn-1"))
	require.NoError(t, store.Remove(ctx, "A", "conn-1"))

	assert.False(t, mr.Exists("test:presence:instance:node-1:members"))
	assert.False(t, mr.Exists("test:presence:room:A:members"))
}

func TestRedisStore_Unavailable(t *testing.T) {
	t.Parallel()
	store, mr := newMiniredisStore(t)
	mr.Close()

	_, err := store.Count(context.Background(), "lobby")
	assert.Error(t, err)
	assert.Error(t, store.Add(context.Background(), "lobby", "c-1"))
}
