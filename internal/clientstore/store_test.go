package clientstore

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
	return NewRedisStore(client, time.Hour), mr
}

func storesUnderTest(t *testing.T) map[string]Store {
	rs, _ := setupRedisStore(t)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"redis":  rs,
	}
}

func TestStore_SetGetDelete(t *testing.T) {
	for name, store := range storesUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "c1", KeyLang)
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, store.Set(ctx, "c1", KeyLang, "ar"))
			v, err := store.Get(ctx, "c1", KeyLang)
			require.NoError(t, err)
			assert.Equal(t, "ar", v)

			// other clients do not see it
			_, err = store.Get(ctx, "c2", KeyLang)
			assert.ErrorIs(t, err, ErrNotFound)

			// last writer wins
			require.NoError(t, store.Set(ctx, "c1", KeyLang, "en"))
			v, _ = store.Get(ctx, "c1", KeyLang)
			assert.Equal(t, "en", v)

			require.NoError(t, store.Delete(ctx, "c1", KeyLang))
			_, err = store.Get(ctx, "c1", KeyLang)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRedisStore_KeyLayoutAndTTL(t *testing.T) {
	store, mr := setupRedisStore(t)
	require.NoError(t, store.Set(context.Background(), "abc", KeyUserEmail, "a@b.c"))

	v, err := mr.Get("client:abc:userEmail")
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", v)
	assert.Equal(t, time.Hour, mr.TTL("client:abc:userEmail"))
}

func TestScoped_JSON(t *testing.T) {
	s := Scope(NewMemoryStore(), "c1")
	ctx := context.Background()

	type payload struct {
		A int `json:"a"`
	}
	require.NoError(t, s.SetJSON(ctx, KeyCart, payload{A: 3}))

	var got payload
	require.NoError(t, s.GetJSON(ctx, KeyCart, &got))
	assert.Equal(t, 3, got.A)
	assert.Equal(t, "c1", s.ClientID())

	require.NoError(t, s.Set(ctx, KeyLastOrder, "{not json"))
	assert.Error(t, s.GetJSON(ctx, KeyLastOrder, &got))
}
