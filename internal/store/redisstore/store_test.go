package redisstore_test

import (
	"context"
	"testing"

	"etherplot/internal/store/redisstore"
	"etherplot/plot"
	"etherplot/plot/storetest"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, opts ...redisstore.Option) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := redisstore.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore_Contract(t *testing.T) {
	s, _ := newStore(t)
	storetest.RunStoreContract(t, s)
}

func TestRedisStore_Prefix(t *testing.T) {
	s, mr := newStore(t, redisstore.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Save(ctx, plot.Plot{ID: 7, Formula: "x", Color: plot.Green}))
	assert.True(t, mr.Exists("test:plot:7"))
	assert.True(t, mr.Exists("test:index"))

	require.NoError(t, s.Delete(ctx, 7))
	assert.False(t, mr.Exists("test:plot:7"))
}

func TestRedisStore_SkipsDanglingIndex(t *testing.T) {
	s, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, plot.Plot{ID: 1, Formula: "x"}, plot.Plot{ID: 2, Formula: "x^2"}))
	mr.Del("etherplot:plot:1")

	got, err := s.Load(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
}

func TestRedisStore_ServerDown(t *testing.T) {
	s, mr := newStore(t)
	mr.Close()

	_, err := s.Load(context.Background(), 0)
	assert.Error(t, err)
}
