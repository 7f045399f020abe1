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

// TestOpenPostgres_SqldefDefineAddRemoveAttribute exercises the
// sqldef-driven DDL path against a real Postgres server, the same
// live-connection convention as the teacher's
// pkg/dbmigrate.Migrate tests (TestMigrate's "postgres" subtest
// dials 127.0.0.1:5432 directly rather than mocking the wire
// protocol), since sqldef opens its own connection independent of
// gorm's and go-sqlmock has nothing to intercept there.
func TestOpenPostgres_SqldefDefineAddRemoveAttribute(t *testing.T) {
	params := sqlstore.PostgresParams{
		Host:     "127.0.0.1",
		Port:     5432,
		Database: "test",
		Username: "test",
		Password: "test",
		SSLMode:  "disable",
	}
	store, err := sqlstore.OpenPostgres(params, types.Config{}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Define(ctx, "gears", types.Attributes{
		"id":   {Name: "id", Type: consts.AttrInt, Primary: true},
		"name": {Name: "name", Type: consts.AttrString, Required: true},
	}))
	t.Cleanup(func() { _ = store.Drop(ctx, "gears") })

	// Re-Define against an existing table reconciles instead of
	// failing with "relation already exists", since sqldef diffs
	// the desired CREATE TABLE against the live schema rather than
	// issuing it unconditionally.
	require.NoError(t, store.Define(ctx, "gears", types.Attributes{
		"id":   {Name: "id", Type: consts.AttrInt, Primary: true},
		"name": {Name: "name", Type: consts.AttrString, Required: true},
	}))

	require.NoError(t, store.AddAttribute(ctx, "gears", types.Attribute{Name: "weight", Type: consts.AttrFloat}))
	described, err := store.Describe(ctx, "gears")
	require.NoError(t, err)
	require.Contains(t, described, "weight")

	require.NoError(t, store.RemoveAttribute(ctx, "gears", "weight"))
	described, err = store.Describe(ctx, "gears")
	require.NoError(t, err)
	require.NotContains(t, described, "weight")
}
