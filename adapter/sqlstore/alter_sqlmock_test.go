package sqlstore_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/forbearing/gstore/adapter/sqlstore"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// newMockStore wraps a go-sqlmock connection as a postgres-dialect
// Store, the same Conn-injection shape the teacher's
// internal/dbmigrate.SchemaDumper uses to assert on emitted SQL
// without a live database. It lets the DDL path (§4.3's add/remove
// diff) be tested against the exact statement text sqlstore issues.
func newMockStore(t *testing.T) (*sqlstore.Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := sqlstore.OpenConn(sqlstore.Postgres, db, types.Config{}, gormlogger.Default.LogMode(gormlogger.Silent))
	require.NoError(t, err)
	return store, mock
}

func TestDefine_IssuesCreateTable(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`CREATE TABLE "crates" \("name" TEXT\)`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Define(ctx, "crates", types.Attributes{
		"name": {Name: "name", Type: consts.AttrString},
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRemoveAttribute_IssueAlterTable(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()

	mock.ExpectExec(`ALTER TABLE "crates" ADD COLUMN "weight" DOUBLE PRECISION`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.AddAttribute(ctx, "crates", types.Attribute{Name: "weight", Type: consts.AttrFloat}))

	mock.ExpectExec(`ALTER TABLE "crates" DROP COLUMN "weight"`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.RemoveAttribute(ctx, "crates", "weight"))

	require.NoError(t, mock.ExpectationsWereMet())
}
