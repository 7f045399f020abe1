package facade_test

import (
	"context"
	"testing"
	"time"

	"github.com/forbearing/gstore/adapter/memstore"
	"github.com/forbearing/gstore/facade"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/stretchr/testify/require"
)

func newFacade(t *testing.T, cfg types.Config) *facade.Facade {
	t.Helper()
	store := memstore.New(cfg)
	f := facade.New(store)
	require.NoError(t, f.Define(context.Background(), "widgets", types.Attributes{
		"name": {Type: consts.AttrString},
	}))
	return f
}

func TestCreateFindRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{CreatedAt: true, UpdatedAt: true})

	created, err := f.Create(ctx, "widgets", types.Record{"name": "sprocket"})
	require.NoError(t, err)
	require.Equal(t, "sprocket", created["name"])
	require.Contains(t, created, "createdAt")
	require.Contains(t, created, "updatedAt")

	found, err := f.Find(ctx, "widgets", created["id"])
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created["name"], found["name"])
}

func TestCreateEach_FindAll(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{})

	_, err := f.CreateEach(ctx, "widgets", []types.Record{
		{"name": "a"}, {"name": "b"}, {"name": "c"},
	})
	require.NoError(t, err)

	all, err := f.FindAll(ctx, "widgets", nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestFind_EmptyReturnsNil(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{})

	rec, err := f.Find(ctx, "widgets", map[string]any{"name": "nope"})
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestFind_MultipleReturnsError(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{})

	_, err := f.Create(ctx, "widgets", types.Record{"name": "dup"})
	require.NoError(t, err)
	_, err = f.Create(ctx, "widgets", types.Record{"name": "dup"})
	require.NoError(t, err)

	_, err = f.Find(ctx, "widgets", map[string]any{"name": "dup"})
	require.Error(t, err)
}

func TestDefine_DuplicateFails(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{})
	err := f.Define(ctx, "widgets", types.Attributes{"name": {Type: consts.AttrString}})
	require.Error(t, err)
}

func TestCreatedAt_NeverChangesAcrossUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{CreatedAt: true, UpdatedAt: true})

	created, err := f.Create(ctx, "widgets", types.Record{"name": "stable"})
	require.NoError(t, err)
	firstCreatedAt := created["createdAt"]

	time.Sleep(5 * time.Millisecond)
	updated, err := f.Update(ctx, "widgets", created["id"], types.Record{"name": "renamed"})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Equal(t, firstCreatedAt, updated[0]["createdAt"])
	require.NotEqual(t, created["updatedAt"], updated[0]["updatedAt"])
}

func TestFindOrCreate_CreatesWhenMissingAndReusesWhenPresent(t *testing.T) {
	ctx := context.Background()
	f := newFacade(t, types.Config{})

	first, err := f.FindOrCreate(ctx, "widgets", map[string]any{"name": "gizmo"}, nil)
	require.NoError(t, err)
	require.Equal(t, "gizmo", first["name"])

	second, err := f.FindOrCreate(ctx, "widgets", map[string]any{"name": "gizmo"}, nil)
	require.NoError(t, err)
	require.Equal(t, first["id"], second["id"])

	count, err := f.Count(ctx, "widgets", nil)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestAlter_AddsNewAndRemovesAbsent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(types.Config{})
	f := facade.New(store)
	require.NoError(t, f.Define(ctx, "items", types.Attributes{
		"a": {Type: consts.AttrString},
		"b": {Type: consts.AttrInt},
	}))

	require.NoError(t, f.Alter(ctx, "items", types.Attributes{
		"a": {Type: consts.AttrString},
		"c": {Type: consts.AttrBool},
	}))

	attrs, err := f.Describe(ctx, "items")
	require.NoError(t, err)
	require.Contains(t, attrs, "a")
	require.Contains(t, attrs, "c")
	require.NotContains(t, attrs, "b")
}

func TestSync_SafeIsNoop(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(types.Config{})
	f := facade.New(store)
	require.NoError(t, f.Define(ctx, "widgets", types.Attributes{"name": {Type: consts.AttrString}}))

	require.NoError(t, f.Sync(ctx, consts.SyncSafe, "widgets", types.Attributes{"other": {Type: consts.AttrBool}}))
	attrs, err := f.Describe(ctx, "widgets")
	require.NoError(t, err)
	require.NotContains(t, attrs, "other")
}

func TestTableName_SnakeCasesPluralForm(t *testing.T) {
	f := newFacade(t, types.Config{})
	require.Equal(t, "order_items", f.TableName("orderItem"))
	require.Equal(t, "widgets", f.TableName("widget"))
}

func TestSync_DropRecreates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New(types.Config{})
	f := facade.New(store)
	require.NoError(t, f.Define(ctx, "widgets", types.Attributes{"name": {Type: consts.AttrString}}))
	_, err := f.Create(ctx, "widgets", types.Record{"name": "gone-after-sync"})
	require.NoError(t, err)

	require.NoError(t, f.Sync(ctx, consts.SyncDrop, "widgets", types.Attributes{"name": {Type: consts.AttrString}}))

	all, err := f.FindAll(ctx, "widgets", nil)
	require.NoError(t, err)
	require.Empty(t, all)
}
