// Package sqlstore is a gorm-backed types.Adapter, built on the usual
// gorm.Open + *zap logger adapter connection bootstrap, generalized
// from a typed Database[M] over static Go structs to the dynamic,
// runtime-declared attribute sets the Facade's Adapter contract
// requires. Collections are plain SQL tables addressed by name;
// records are gorm's documented schemaless map[string]any rows.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	sqldefdb "github.com/sqldef/sqldef/v3/database"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Dialect selects the concrete SQL driver, mirroring the "sqlite" and
// "postgres" values of config.Facade.Adapter.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store is a types.Adapter backed by a single *gorm.DB connection.
type Store struct {
	db      *gorm.DB
	dialect Dialect
	cfg     types.Config

	// pg, when non-nil, lets Define/AddAttribute/RemoveAttribute drive
	// the schema-diff-and-apply path through sqldef instead of issuing
	// hand-built CREATE/ALTER TABLE text. Populated only by
	// OpenPostgres, which has the discrete connection fields sqldef
	// needs to open its own catalog connection.
	pg *sqldefdb.Config
}

var (
	_ types.Adapter             = (*Store)(nil)
	_ types.Initializer         = (*Store)(nil)
	_ types.Teardowner          = (*Store)(nil)
	_ types.Definer             = (*Store)(nil)
	_ types.Describer           = (*Store)(nil)
	_ types.Dropper             = (*Store)(nil)
	_ types.ColumnAlterer       = (*Store)(nil)
	_ types.Creator             = (*Store)(nil)
	_ types.Finder              = (*Store)(nil)
	_ types.Counter             = (*Store)(nil)
	_ types.Updater             = (*Store)(nil)
	_ types.Destroyer           = (*Store)(nil)
	_ types.MonotonicIDsCapable = (*Store)(nil)
)

// Open is one gorm.Open call against the selected dialector, with
// gorm's own logger replaced by the one this module wires through the
// logger package.
func Open(dialect Dialect, dsn string, cfg types.Config, gormLog gormlogger.Interface) (*Store, error) {
	var dialector gorm.Dialector
	switch dialect {
	case SQLite:
		dialector = sqlite.Open(dsn)
	case Postgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.Newf("sqlstore: unsupported dialect %q", dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, errors.Wrapf(err, "sqlstore: failed to open %s connection", dialect)
	}

	return &Store{db: db, dialect: dialect, cfg: cfg}, nil
}

// PostgresParams is the discrete connection descriptor sqldef needs to
// open its own catalog connection (github.com/sqldef/sqldef/v3's
// database.Config shape), the same fields the teacher's
// pkg/dbmigrate.DatabaseConfig carries.
type PostgresParams struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string
}

func (p PostgresParams) dsn() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		p.Host, p.Port, p.Database, p.Username, p.Password, p.SSLMode)
}

func (p PostgresParams) sqldefConfig() sqldefdb.Config {
	return sqldefdb.Config{
		DbName:   p.Database,
		User:     p.Username,
		Password: p.Password,
		Host:     p.Host,
		Port:     p.Port,
		SslMode:  p.SSLMode,
	}
}

// OpenPostgres opens a Postgres-backed Store whose Define/AddAttribute/
// RemoveAttribute are driven by sqldef's ExportDDLs +
// GenerateIdempotentDDLs pipeline (see ddl.go), mirroring the teacher's
// pkg/dbmigrate.Migrate. gorm still owns the connection used for CRUD
// and Describe; sqldef opens its own connection from p for the
// schema-diff path, the same two-connections-one-database shape
// pkg/dbmigrate.Migrate and the CRUD-facing Database[M] use side by
// side in the teacher.
func OpenPostgres(p PostgresParams, cfg types.Config, gormLog gormlogger.Interface) (*Store, error) {
	gdb, err := gorm.Open(postgres.Open(p.dsn()), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: failed to open postgres connection")
	}
	sqldefCfg := p.sqldefConfig()
	return &Store{db: gdb, dialect: Postgres, cfg: cfg, pg: &sqldefCfg}, nil
}

// OpenConn wraps an already-open *sql.DB as dialect, the same
// Conn-injection shape the teacher's internal/dbmigrate.SchemaDumper
// uses to drive gorm against a go-sqlmock connection instead of a real
// server. Postgres is the only dialect usable this way: gorm's sqlite
// driver does not accept an injected *sql.DB.
func OpenConn(dialect Dialect, db *sql.DB, cfg types.Config, gormLog gormlogger.Interface) (*Store, error) {
	if dialect != Postgres {
		return nil, errors.Newf("sqlstore: OpenConn only supports %q, got %q", Postgres, dialect)
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db, PreferSimpleProtocol: true}), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, errors.Wrap(err, "sqlstore: failed to open connection over existing *sql.DB")
	}
	return &Store{db: gdb, dialect: dialect, cfg: cfg}, nil
}

func (s *Store) Identity() string     { return "sqlstore:" + string(s.dialect) }
func (s *Store) Config() types.Config { return s.cfg }

// MonotonicIDs reports true: both dialects assign the id primary key
// from a strictly increasing sequence (SQLite's ROWID, Postgres's
// serial/bigserial), consistent with insertion arrival.
func (s *Store) MonotonicIDs() bool { return true }

func (s *Store) Initialize(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "sqlstore: failed to acquire *sql.DB")
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Teardown(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "sqlstore: failed to acquire *sql.DB")
	}
	return sqlDB.Close()
}

func (s *Store) conn(ctx context.Context) *gorm.DB { return s.db.WithContext(ctx) }

// columnType maps an Attribute's semantic type to a column type the
// active dialect understands.
func (s *Store) columnType(a types.Attribute) string {
	switch a.Type {
	case consts.AttrInt:
		if a.Primary {
			if s.dialect == Postgres {
				return "BIGSERIAL"
			}
			return "INTEGER"
		}
		return "BIGINT"
	case consts.AttrFloat:
		return "DOUBLE PRECISION"
	case consts.AttrBool:
		return "BOOLEAN"
	case consts.AttrTime:
		return "TIMESTAMP"
	case consts.AttrJSON:
		if s.dialect == Postgres {
			return "JSONB"
		}
		return "TEXT"
	default:
		return "TEXT"
	}
}

func (s *Store) columnDef(a types.Attribute) string {
	def := quoteIdent(a.Name) + " " + s.columnType(a)
	if a.Primary {
		def += " PRIMARY KEY"
		if s.dialect == SQLite && a.Type == consts.AttrInt {
			def += " AUTOINCREMENT"
		}
	}
	if a.Required && !a.Primary {
		def += " NOT NULL"
	}
	if a.Unique && !a.Primary {
		def += " UNIQUE"
	}
	return def
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func sqlTypeToAttrType(sqlType string) consts.AttrType {
	t := strings.ToUpper(sqlType)
	switch {
	case strings.Contains(t, "INT"):
		return consts.AttrInt
	case strings.Contains(t, "BOOL"):
		return consts.AttrBool
	case strings.Contains(t, "DOUBLE"), strings.Contains(t, "FLOAT"), strings.Contains(t, "REAL"), strings.Contains(t, "NUMERIC"), strings.Contains(t, "DECIMAL"):
		return consts.AttrFloat
	case strings.Contains(t, "TIME"), strings.Contains(t, "DATE"):
		return consts.AttrTime
	case strings.Contains(t, "JSON"):
		return consts.AttrJSON
	default:
		return consts.AttrString
	}
}
