package redisstore_test

import (
	"context"
	"os"
	"testing"

	"github.com/forbearing/gstore/adapter/redisstore"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// newStore requires a live Redis reachable at REDIS_ADDR; skipped
// otherwise since this module carries no embedded/fake Redis server
// dependency.
func newStore(t *testing.T) *redisstore.Store {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping redisstore integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	require.NoError(t, rdb.Ping(context.Background()).Err())
	return redisstore.New(rdb, "gstore_test", types.Config{CreatedAt: true, UpdatedAt: true}, 0)
}

func TestDefineDescribeDrop(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	defer s.Drop(ctx, "widgets")

	attrs := types.Attributes{"name": {Name: "name", Type: consts.AttrString}}
	require.NoError(t, s.Define(ctx, "widgets", attrs))

	described, err := s.Describe(ctx, "widgets")
	require.NoError(t, err)
	require.Contains(t, described, "name")

	require.NoError(t, s.Drop(ctx, "widgets"))
	described, err = s.Describe(ctx, "widgets")
	require.NoError(t, err)
	require.Nil(t, described)
}

func TestCreateFindUpdateDestroy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	defer s.Drop(ctx, "parts")

	require.NoError(t, s.Define(ctx, "parts", types.Attributes{
		"name": {Name: "name", Type: consts.AttrString},
	}))

	created, err := s.Create(ctx, "parts", types.Record{"name": "bolt"})
	require.NoError(t, err)
	require.Equal(t, "bolt", created["name"])
	require.NotZero(t, created["id"])

	found, err := s.Find(ctx, "parts", &types.Criterion{Where: map[string]any{"name": "bolt"}})
	require.NoError(t, err)
	require.Len(t, found, 1)

	n, err := s.Count(ctx, "parts", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	updated, err := s.Update(ctx, "parts", &types.Criterion{Where: map[string]any{"name": "bolt"}}, types.Record{"name": "screw"})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Equal(t, "screw", updated[0]["name"])

	destroyed, err := s.Destroy(ctx, "parts", &types.Criterion{Where: map[string]any{"name": "screw"}})
	require.NoError(t, err)
	require.Len(t, destroyed, 1)
}

func TestMonotonicIDsAcrossSequentialCreates(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	defer s.Drop(ctx, "sequenced")

	require.NoError(t, s.Define(ctx, "sequenced", types.Attributes{
		"n": {Name: "n", Type: consts.AttrInt},
	}))
	require.True(t, s.MonotonicIDs())

	first, err := s.Create(ctx, "sequenced", types.Record{"n": 1})
	require.NoError(t, err)
	second, err := s.Create(ctx, "sequenced", types.Record{"n": 2})
	require.NoError(t, err)
	require.Less(t, first["id"].(int64), second["id"].(int64))
}
