package sqlstore

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	sqldefdb "github.com/sqldef/sqldef/v3/database"
	"github.com/sqldef/sqldef/v3/database/postgres"
	"github.com/sqldef/sqldef/v3/parser"
	"github.com/sqldef/sqldef/v3/schema"
)

// createTableDDL renders collection's desired full definition as one
// CREATE TABLE statement, the shape both the direct-Exec path and the
// sqldef desired/current diff path below need.
func (s *Store) createTableDDL(collection string, attrs types.Attributes) string {
	defs := make([]string, 0, len(attrs))
	for _, a := range attrs {
		defs = append(defs, s.columnDef(a))
	}
	return "CREATE TABLE " + quoteIdent(collection) + " (" + strings.Join(defs, ", ") + ")"
}

// applyDesiredSchema drives sqldef's idempotent-migration pipeline the
// way the teacher's pkg/dbmigrate.Migrate does: open a catalog
// connection independent of gorm's, export the live schema as DDL
// text, diff it against the desired CREATE TABLE text, and run
// whatever idempotent ALTER/CREATE statements come out. Used only when
// s.pg is set (OpenPostgres); sqlite and the sqlmock-backed test
// connection fall back to direct Exec in the callers below.
func (s *Store) applyDesiredSchema(desiredDDL string) error {
	db, err := postgres.NewDatabase(*s.pg)
	if err != nil {
		return errors.Wrap(err, "sqlstore: open sqldef connection")
	}
	defer db.Close()

	currentDDLs, err := db.ExportDDLs()
	if err != nil {
		return errors.Wrap(err, "sqlstore: export current schema")
	}

	db.SetGeneratorConfig(sqldefdb.GeneratorConfig{})
	sqlParser := sqldefdb.NewParser(parser.ParserModePostgres)
	ddls, err := schema.GenerateIdempotentDDLs(schema.GeneratorModePostgres, sqlParser, desiredDDL, currentDDLs, db.GetGeneratorConfig(), db.GetDefaultSchema())
	if err != nil {
		return errors.Wrap(err, "sqlstore: generate schema diff")
	}
	if len(ddls) == 0 {
		return nil
	}
	if err := sqldefdb.RunDDLs(db, ddls, nil, "", sqldefdb.StdoutLogger{}); err != nil {
		return errors.Wrap(err, "sqlstore: apply schema diff")
	}
	return nil
}

// Define issues a CREATE TABLE for collection with one column per
// attribute, built from the Facade's runtime Attributes rather than a
// struct's field tags. On a Store opened with OpenPostgres this goes
// through sqldef's desired/current diff instead of a raw Exec, so a
// second Define against an existing table reconciles rather than
// fails.
func (s *Store) Define(ctx context.Context, collection string, attrs types.Attributes) error {
	stmt := s.createTableDDL(collection, attrs)
	if s.dialect == Postgres && s.pg != nil {
		return errors.Wrapf(s.applyDesiredSchema(stmt), "sqlstore: define %q", collection)
	}
	if err := s.conn(ctx).Exec(stmt).Error; err != nil {
		return errors.Wrapf(err, "sqlstore: define %q", collection)
	}
	return nil
}

// Describe reports collection's current attributes by reading back the
// dialect's catalog, or nil if the table does not exist.
func (s *Store) Describe(ctx context.Context, collection string) (types.Attributes, error) {
	has := s.conn(ctx).Migrator().HasTable(collection)
	if !has {
		return nil, nil
	}

	switch s.dialect {
	case SQLite:
		return s.describeSQLite(ctx, collection)
	case Postgres:
		return s.describePostgres(ctx, collection)
	default:
		return nil, errors.Newf("sqlstore: unsupported dialect %q", s.dialect)
	}
}

type sqliteColumnInfo struct {
	CID       int    `gorm:"column:cid"`
	Name      string `gorm:"column:name"`
	Type      string `gorm:"column:type"`
	NotNull   int    `gorm:"column:notnull"`
	DfltValue *string
	PK        int `gorm:"column:pk"`
}

func (s *Store) describeSQLite(ctx context.Context, collection string) (types.Attributes, error) {
	var cols []sqliteColumnInfo
	if err := s.conn(ctx).Raw("PRAGMA table_info(" + quoteIdent(collection) + ")").Scan(&cols).Error; err != nil {
		return nil, errors.Wrapf(err, "sqlstore: describe %q", collection)
	}
	attrs := make(types.Attributes, len(cols))
	for _, c := range cols {
		attrs[c.Name] = types.Attribute{
			Name:     c.Name,
			Type:     sqlTypeToAttrType(c.Type),
			Primary:  c.PK > 0,
			Required: c.NotNull == 1,
		}
	}
	return attrs, nil
}

type pgColumnInfo struct {
	ColumnName string `gorm:"column:column_name"`
	DataType   string `gorm:"column:data_type"`
	IsNullable string `gorm:"column:is_nullable"`
}

func (s *Store) describePostgres(ctx context.Context, collection string) (types.Attributes, error) {
	var cols []pgColumnInfo
	err := s.conn(ctx).Raw(
		"SELECT column_name, data_type, is_nullable FROM information_schema.columns WHERE table_name = ?",
		collection,
	).Scan(&cols).Error
	if err != nil {
		return nil, errors.Wrapf(err, "sqlstore: describe %q", collection)
	}

	primaryKeys := make(map[string]bool)
	var pkNames []string
	err = s.conn(ctx).Raw(
		`SELECT a.attname FROM pg_index i
		 JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
		 WHERE i.indrelid = ?::regclass AND i.indisprimary`, collection,
	).Scan(&pkNames).Error
	if err == nil {
		for _, n := range pkNames {
			primaryKeys[n] = true
		}
	}

	attrs := make(types.Attributes, len(cols))
	for _, c := range cols {
		attrs[c.ColumnName] = types.Attribute{
			Name:     c.ColumnName,
			Type:     sqlTypeToAttrType(c.DataType),
			Primary:  primaryKeys[c.ColumnName],
			Required: c.IsNullable == "NO",
		}
	}
	return attrs, nil
}

// Drop removes collection entirely.
func (s *Store) Drop(ctx context.Context, collection string) error {
	if err := s.conn(ctx).Migrator().DropTable(collection); err != nil {
		return errors.Wrapf(err, "sqlstore: drop %q", collection)
	}
	return nil
}

// AddAttribute issues an ALTER TABLE ... ADD COLUMN. On a Store opened
// with OpenPostgres, the new full column set is instead expressed as
// one desired CREATE TABLE and handed to sqldef, which comes back with
// exactly the ADD COLUMN statement needed.
func (s *Store) AddAttribute(ctx context.Context, collection string, attr types.Attribute) error {
	if s.dialect == Postgres && s.pg != nil {
		current, err := s.Describe(ctx, collection)
		if err != nil {
			return errors.Wrapf(err, "sqlstore: add attribute %q.%q", collection, attr.Name)
		}
		if current == nil {
			current = types.Attributes{}
		}
		current[attr.Name] = attr
		return errors.Wrapf(s.applyDesiredSchema(s.createTableDDL(collection, current)), "sqlstore: add attribute %q.%q", collection, attr.Name)
	}
	stmt := "ALTER TABLE " + quoteIdent(collection) + " ADD COLUMN " + s.columnDef(attr)
	if err := s.conn(ctx).Exec(stmt).Error; err != nil {
		return errors.Wrapf(err, "sqlstore: add attribute %q.%q", collection, attr.Name)
	}
	return nil
}

// RemoveAttribute issues an ALTER TABLE ... DROP COLUMN, or drives the
// same sqldef desired/current diff as AddAttribute with the column
// missing from the desired set.
func (s *Store) RemoveAttribute(ctx context.Context, collection string, name string) error {
	if s.dialect == Postgres && s.pg != nil {
		current, err := s.Describe(ctx, collection)
		if err != nil {
			return errors.Wrapf(err, "sqlstore: remove attribute %q.%q", collection, name)
		}
		delete(current, name)
		return errors.Wrapf(s.applyDesiredSchema(s.createTableDDL(collection, current)), "sqlstore: remove attribute %q.%q", collection, name)
	}
	stmt := "ALTER TABLE " + quoteIdent(collection) + " DROP COLUMN " + quoteIdent(name)
	if err := s.conn(ctx).Exec(stmt).Error; err != nil {
		return errors.Wrapf(err, "sqlstore: remove attribute %q.%q", collection, name)
	}
	return nil
}
