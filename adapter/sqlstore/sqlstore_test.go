package sqlstore_test

import (
	"context"
	"testing"

	"github.com/forbearing/gstore/adapter/sqlstore"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func newStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(sqlstore.SQLite, "file::memory:?cache=shared", types.Config{CreatedAt: true, UpdatedAt: true}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	return store
}

func TestDefineDescribeDrop(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	attrs := types.Attributes{
		"id":   {Name: "id", Type: consts.AttrInt, Primary: true},
		"name": {Name: "name", Type: consts.AttrString, Required: true},
	}
	require.NoError(t, s.Define(ctx, "gadgets", attrs))

	described, err := s.Describe(ctx, "gadgets")
	require.NoError(t, err)
	require.Contains(t, described, "id")
	require.Contains(t, described, "name")
	require.True(t, described["id"].Primary)

	require.NoError(t, s.Drop(ctx, "gadgets"))
	described, err = s.Describe(ctx, "gadgets")
	require.NoError(t, err)
	require.Nil(t, described)
}

func TestCreateFindUpdateDestroy(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Define(ctx, "parts", types.Attributes{
		"id":   {Name: "id", Type: consts.AttrInt, Primary: true},
		"name": {Name: "name", Type: consts.AttrString},
	}))

	created, err := s.Create(ctx, "parts", types.Record{"name": "bolt"})
	require.NoError(t, err)
	require.Equal(t, "bolt", created["name"])

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

	n, err = s.Count(ctx, "parts", nil)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestAddRemoveAttribute(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	require.NoError(t, s.Define(ctx, "crates", types.Attributes{
		"id": {Name: "id", Type: consts.AttrInt, Primary: true},
	}))
	require.NoError(t, s.AddAttribute(ctx, "crates", types.Attribute{Name: "weight", Type: consts.AttrFloat}))

	described, err := s.Describe(ctx, "crates")
	require.NoError(t, err)
	require.Contains(t, described, "weight")

	require.NoError(t, s.RemoveAttribute(ctx, "crates", "weight"))
	described, err = s.Describe(ctx, "crates")
	require.NoError(t, err)
	require.NotContains(t, described, "weight")
}
