// Package facade implements the Adapter Facade (spec §4.3-§4.5): a
// single object that upgrades a partial Adapter implementation into a
// fully-featured collection API, supplying defaults (schema diffing for
// alter, loop-based createEach, transactional findOrCreate), timestamp
// bookkeeping, and criteria normalization.
package facade

import (
	"context"
	"sync"
	"time"

	"github.com/forbearing/gstore/lock"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/gertd/go-pluralize"
	"github.com/stoewer/go-strcase"
)

// Facade is constructed once per Adapter instance. Multiple Facades may
// coexist without interference — there is no package-level state (spec
// §9 "Global state").
type Facade struct {
	adapter types.Adapter
	cfg     types.Config

	// Capability dispatch is memoized once here at construction (spec
	// §9 "Adapter-as-open-object"), rather than re-probed per call.
	initializer   types.Initializer
	teardowner    types.Teardowner
	collInit      types.CollectionInitializer
	collTeardown  types.CollectionTeardowner
	definer       types.Definer
	describer     types.Describer
	dropper       types.Dropper
	alterer       types.Alterer
	colAlterer    types.ColumnAlterer
	creator       types.Creator
	finder        types.Finder
	counter       types.Counter
	updater       types.Updater
	destroyer     types.Destroyer
	nativeFOC     types.NativeFindOrCreator
	nativeBatch   types.NativeBatchCreator
	nativeFOCEach types.NativeFindOrCreateEacher
	monotonic     types.MonotonicIDsCapable

	transactionCollection string
	lockPollInterval      time.Duration
	lockMgr               *lock.Manager
	log                   Logger
	plural                *pluralize.Client

	collections map[string]bool // names defined through this Facade; spec §3 "Collection names are unique per Facade instance"

	txCollOnce sync.Once
	txCollErr  error
}

// Logger is the logging capability the facade and lock manager need.
// *zap.SugaredLogger satisfies this.
type Logger interface {
	Warnf(format string, args ...any)
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Debugf(string, ...any) {}

// Option configures a Facade at construction.
type Option func(*Facade)

// WithLogger sets the logger used for lock-warning and debug diagnostics.
func WithLogger(l Logger) Option { return func(f *Facade) { f.log = l } }

// WithTransactionCollection overrides the reserved collection name the
// Lock Manager stores its entries in (spec §6 "Reserved collection").
func WithTransactionCollection(name string) Option {
	return func(f *Facade) { f.transactionCollection = name }
}

// WithLockPollInterval overrides the fallback cross-process re-scan
// interval used while a caller is queued for a lock (see package lock).
func WithLockPollInterval(d time.Duration) Option {
	return func(f *Facade) { f.lockPollInterval = d }
}

// New upgrades adapter into a Facade. adapter's Config() is read once
// here and used for every subsequent operation.
func New(adapter types.Adapter, opts ...Option) *Facade {
	f := &Facade{
		adapter:               adapter,
		cfg:                   adapter.Config(),
		transactionCollection: consts.TransactionCollection,
		log:                   noopLogger{},
		plural:                pluralize.NewClient(),
		collections:           make(map[string]bool),
	}

	f.initializer, _ = adapter.(types.Initializer)
	f.teardowner, _ = adapter.(types.Teardowner)
	f.collInit, _ = adapter.(types.CollectionInitializer)
	f.collTeardown, _ = adapter.(types.CollectionTeardowner)
	f.definer, _ = adapter.(types.Definer)
	f.describer, _ = adapter.(types.Describer)
	f.dropper, _ = adapter.(types.Dropper)
	f.alterer, _ = adapter.(types.Alterer)
	f.colAlterer, _ = adapter.(types.ColumnAlterer)
	f.creator, _ = adapter.(types.Creator)
	f.finder, _ = adapter.(types.Finder)
	f.counter, _ = adapter.(types.Counter)
	f.updater, _ = adapter.(types.Updater)
	f.destroyer, _ = adapter.(types.Destroyer)
	f.nativeFOC, _ = adapter.(types.NativeFindOrCreator)
	f.nativeBatch, _ = adapter.(types.NativeBatchCreator)
	f.nativeFOCEach, _ = adapter.(types.NativeFindOrCreateEacher)
	f.monotonic, _ = adapter.(types.MonotonicIDsCapable)

	for _, opt := range opts {
		opt(f)
	}

	if f.monotonic == nil || !f.monotonic.MonotonicIDs() {
		f.log.Warnf("adapter %q does not declare MonotonicIDsCapable; lock manager FIFO ordering is not guaranteed", adapter.Identity())
	}

	lockOpts := []lock.Option{
		lock.WithWarningTimer(time.Duration(f.cfg.TransactionWarningTimerMS) * time.Millisecond),
		lock.WithLogger(f.log),
	}
	if f.lockPollInterval > 0 {
		lockOpts = append(lockOpts, lock.WithPollInterval(f.lockPollInterval))
	}
	f.lockMgr = lock.New(lockBackend{f}, f.transactionCollection, lockOpts...)

	return f
}

// lockBackend adapts *Facade's any-typed criteria methods to the
// strictly-typed lock.Backend interface.
type lockBackend struct{ f *Facade }

func (b lockBackend) Create(ctx context.Context, collection string, values types.Record) (types.Record, error) {
	return b.f.Create(ctx, collection, values)
}

func (b lockBackend) FindAll(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	return b.f.FindAll(ctx, collection, criteria)
}

func (b lockBackend) Destroy(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	return b.f.Destroy(ctx, collection, criteria)
}

// AdapterIdentity returns the short name of the adapter this Facade
// wraps, useful for logging and diagnostics.
func (f *Facade) AdapterIdentity() string { return f.adapter.Identity() }

// PluralName derives the conventional plural form of a singular
// collection name (e.g. "widget" -> "widgets"), used by callers that
// want a display or default table name without hand-pluralizing.
func (f *Facade) PluralName(name string) string { return f.plural.Plural(name) }

// TableName derives the snake_case, pluralized identifier a SQL-backed
// adapter would conventionally use for collection (e.g. "orderItem" ->
// "order_items"), the same `strcase.SnakeCase(pluralize(...))`
// composition the teacher's model package uses to name a model's
// backing table. The Facade itself never calls this — collection names
// are passed through to the adapter verbatim — but a host or adapter
// that wants the conventional table name for a collection can derive
// it here instead of re-implementing the casing rule.
func (f *Facade) TableName(collection string) string {
	return strcase.SnakeCase(f.plural.Plural(collection))
}

// transactionName builds the single-dot naming convention spec.md §9
// resolves as canonical: "<collection>.gstore.default.<op>".
func transactionName(collection, op string) string {
	return collection + ".gstore.default." + op
}

// Initialize runs once per Facade; forwards to the adapter if it
// implements Initializer, else calls back immediately (spec §4.3).
func (f *Facade) Initialize(ctx context.Context) error {
	if f.initializer != nil {
		return f.initializer.Initialize(ctx)
	}
	return nil
}

// Teardown is symmetric to Initialize.
func (f *Facade) Teardown(ctx context.Context) error {
	if f.teardowner != nil {
		return f.teardowner.Teardown(ctx)
	}
	return nil
}

// InitializeCollection is a per-collection lifecycle hook; no-op default.
func (f *Facade) InitializeCollection(ctx context.Context, collection string) error {
	if f.collInit != nil {
		return f.collInit.InitializeCollection(ctx, collection)
	}
	return nil
}

// TeardownCollection is symmetric to InitializeCollection.
func (f *Facade) TeardownCollection(ctx context.Context, collection string) error {
	if f.collTeardown != nil {
		return f.collTeardown.TeardownCollection(ctx, collection)
	}
	return nil
}

// ensureTransactionCollection lazily defines the reserved transaction
// collection (spec §6 "Reserved collection") the first time a compound
// operation needs the Lock Manager. It is safe to call repeatedly and
// from concurrent goroutines.
func (f *Facade) ensureTransactionCollection(ctx context.Context) error {
	f.txCollOnce.Do(func() {
		existing, err := f.Describe(ctx, f.transactionCollection)
		if err != nil {
			f.txCollErr = err
			return
		}
		if existing != nil {
			return
		}
		f.txCollErr = f.Define(ctx, f.transactionCollection, types.Attributes{
			"uuid": {Type: consts.AttrString},
			"name": {Type: consts.AttrString},
		})
	})
	return f.txCollErr
}
