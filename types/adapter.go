package types

import "context"

// Config carries the recognized adapter configuration keys.
type Config struct {
	// CreatedAt auto-injects and stamps a createdAt attribute on create.
	CreatedAt bool
	// UpdatedAt auto-injects and stamps an updatedAt attribute on
	// create and update.
	UpdatedAt bool
	// TransactionWarningTimerMS is the threshold, in milliseconds,
	// after which the Lock Manager logs a diagnostic for a critical
	// section that hasn't unlocked yet. Zero disables the warning.
	TransactionWarningTimerMS int
}

// Adapter is the base contract every backing store must satisfy. The
// facade probes for the richer capability interfaces below at
// construction time and falls back to its own default implementation
// when an adapter doesn't implement one.
type Adapter interface {
	// Identity is a short, stable name for this adapter instance (e.g.
	// "sqlstore:sqlite", "redisstore"), used in logs and error messages.
	Identity() string
	// Config returns this adapter's recognized configuration.
	Config() Config
}

// Capability interfaces. An Adapter implements any subset of these;
// none are required beyond the base Adapter contract.

type Initializer interface {
	Initialize(ctx context.Context) error
}

type Teardowner interface {
	Teardown(ctx context.Context) error
}

type CollectionInitializer interface {
	InitializeCollection(ctx context.Context, collection string) error
}

type CollectionTeardowner interface {
	TeardownCollection(ctx context.Context, collection string) error
}

// Definer creates a new collection with the given attribute set.
type Definer interface {
	Define(ctx context.Context, collection string, attrs Attributes) error
}

// Describer reports the attributes of a collection. It returns
// (nil, nil) — no attrs, no error — to signal "does not exist".
type Describer interface {
	Describe(ctx context.Context, collection string) (Attributes, error)
}

type Dropper interface {
	Drop(ctx context.Context, collection string) error
}

// Alterer is the native alter path. An adapter that implements this is
// trusted to evolve its own schema atomically.
type Alterer interface {
	Alter(ctx context.Context, collection string, target Attributes) error
}

// ColumnAlterer is the piecewise alter path: an adapter that can add
// and remove individual columns, leaving the diffing to schema.Diff
// and facade.Alter.
type ColumnAlterer interface {
	AddAttribute(ctx context.Context, collection string, attr Attribute) error
	RemoveAttribute(ctx context.Context, collection string, name string) error
}

type Creator interface {
	Create(ctx context.Context, collection string, values Record) (Record, error)
}

type Finder interface {
	Find(ctx context.Context, collection string, criteria *Criterion) ([]Record, error)
}

type Counter interface {
	Count(ctx context.Context, collection string, criteria *Criterion) (int64, error)
}

type Updater interface {
	Update(ctx context.Context, collection string, criteria *Criterion, values Record) ([]Record, error)
}

type Destroyer interface {
	Destroy(ctx context.Context, collection string, criteria *Criterion) ([]Record, error)
}

// NativeFindOrCreator, NativeBatchCreator and NativeFindOrCreateEacher
// are presumed atomic at the adapter level; the facade prefers these
// over its own lock-manager-backed default.
type NativeFindOrCreator interface {
	FindOrCreate(ctx context.Context, collection string, criteria *Criterion, values Record) (Record, error)
}

type NativeBatchCreator interface {
	CreateEach(ctx context.Context, collection string, values []Record) ([]Record, error)
}

type NativeFindOrCreateEacher interface {
	FindOrCreateEach(ctx context.Context, collection string, criterias []*Criterion, values []Record) ([]Record, error)
}

// MonotonicIDsCapable is declared by adapters whose assigned
// LockEntry.ID is guaranteed consistent with insertion arrival.
// facade.New logs a warning through the Facade's logger when it is
// constructed over an adapter that doesn't declare it (or reports
// false).
type MonotonicIDsCapable interface {
	MonotonicIDs() bool
}
