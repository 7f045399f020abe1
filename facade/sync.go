package facade

import (
	"context"

	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
)

// Sync reconciles collection's schema with attrs at startup, using one
// of the three named policies a host selects (spec §4.7). It is the
// single entry point bootstrap code should call per collection.
func (f *Facade) Sync(ctx context.Context, strategy consts.SyncStrategy, collection string, attrs types.Attributes) error {
	switch strategy {
	case consts.SyncDrop:
		return f.syncDrop(ctx, collection, attrs)
	case consts.SyncAlter:
		return f.syncAlter(ctx, collection, attrs)
	case consts.SyncSafe:
		return nil
	default:
		return f.syncAlter(ctx, collection, attrs)
	}
}

// syncDrop unconditionally drops then defines.
func (f *Facade) syncDrop(ctx context.Context, collection string, attrs types.Attributes) error {
	if err := f.Drop(ctx, collection); err != nil {
		return err
	}
	return f.defineIgnoringExists(ctx, collection, attrs)
}

// syncAlter defines the collection if it doesn't exist yet, else
// applies the §4.3 diff algorithm via Alter.
func (f *Facade) syncAlter(ctx context.Context, collection string, attrs types.Attributes) error {
	existing, err := f.Describe(ctx, collection)
	if err != nil {
		return err
	}
	if existing == nil {
		return f.defineIgnoringExists(ctx, collection, attrs)
	}
	return f.Alter(ctx, collection, attrs)
}

// defineIgnoringExists calls Define but tolerates ErrCollectionExists:
// Sync is idempotent across restarts, whereas Define's "already exists"
// failure is meant for callers defining a brand new collection by hand.
func (f *Facade) defineIgnoringExists(ctx context.Context, collection string, attrs types.Attributes) error {
	err := f.Define(ctx, collection, attrs)
	if err == nil {
		return nil
	}
	existing, descErr := f.Describe(ctx, collection)
	if descErr == nil && existing != nil {
		return nil
	}
	return err
}
