package types

import "github.com/cockroachdb/errors"

// Precondition errors: malformed criteria, a missing required adapter
// operation, a duplicate define. Surfaced synchronously, before
// anything reaches the adapter.
var (
	ErrInvalidCriteria       = errors.New("invalid options/criteria")
	ErrNoCreateMethod        = errors.New("no create() method defined")
	ErrCollectionExists      = errors.New("trying to define a collection which already exists")
	ErrUnsupportedComparator = errors.New("adapter cannot evaluate an opaque comparator criterion")
)

// Constraint errors: violations detected after a successful round-trip
// to the adapter.
var (
	ErrTooManyRecords    = errors.New("more than one record returned")
	ErrNoSuchCollection  = errors.New("no such collection")
	ErrLockEntryNotFound = errors.New("lock entry not found")
)
