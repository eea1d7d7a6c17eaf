package flash

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Minute), mr
}

func TestStores_PushPop(t *testing.T) {
	redisStore, _ := setupRedisStore(t)

	stores := map[string]Store{
		"redis":  redisStore,
		"memory": NewMemoryStore(),
	}

	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			msg, err := store.Pop(ctx, 1)
			require.NoError(t, err)
			assert.Nil(t, msg)

			require.NoError(t, store.Push(ctx, 1, Message{Type: Success, Message: "first"}))
			require.NoError(t, store.Push(ctx, 1, Message{Type: Error, Message: "Item not found."}))
			require.NoError(t, store.Push(ctx, 2, Message{Type: Success, Message: "other user"}))

			msg, err = store.Pop(ctx, 1)
			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Equal(t, Error, msg.Type)
			assert.Equal(t, "Item not found.", msg.Message)

			// one-shot
			msg, err = store.Pop(ctx, 1)
			require.NoError(t, err)
			assert.Nil(t, msg)

			msg, err = store.Pop(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, "other user", msg.Message)
		})
	}
}

func TestRedisStore_Expires(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Push(ctx, 5, Message{Type: Success, Message: "soon gone"}))
	assert.Equal(t, time.Minute, mr.TTL(key(5)))

	mr.FastForward(2 * time.Minute)

	msg, err := store.Pop(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, msg)
}
