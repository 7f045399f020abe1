package facade

import (
	"context"

	"github.com/forbearing/gstore/criteria"
	"github.com/forbearing/gstore/lock"
	"github.com/forbearing/gstore/types"
)

// FindOrCreate returns the first record matching criteria; if none
// exists, it creates one with values (or criteria's where clause if
// values is nil) and returns it (spec §4.5).
//
// When the adapter provides NativeFindOrCreator, that native path is
// used and presumed atomic. Otherwise the facade synthesizes atomicity
// by running the find-then-create sequence inside a named transaction:
// "<collection>.gstore.default.create.findOrCreate" — every concurrent
// FindOrCreate against the same collection is thus serialized through
// that one name.
func (f *Facade) FindOrCreate(ctx context.Context, collection string, rawCriteria any, values types.Record) (types.Record, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return nil, err
	}

	if f.nativeFOC != nil {
		return f.nativeFOC.FindOrCreate(ctx, collection, c, values)
	}
	if err := f.ensureTransactionCollection(ctx); err != nil {
		return nil, err
	}

	if values == nil {
		values = types.Record(c.Where)
	}

	name := transactionName(collection, "create.findOrCreate")
	var result types.Record
	var opErr error
	txErr := f.lockMgr.Transaction(ctx, name, func(lockErr error, unlock lock.UnlockFunc) {
		if lockErr != nil {
			opErr = lockErr
			return
		}
		defer unlock()

		found, err := f.Find(ctx, collection, c)
		if err != nil {
			opErr = err
			return
		}
		if found != nil {
			result = found
			return
		}
		created, err := f.Create(ctx, collection, values)
		if err != nil {
			opErr = err
			return
		}
		result = created
	}, nil)
	if txErr != nil {
		return nil, txErr
	}
	return result, opErr
}

// CreateEach batch-inserts valuesList (spec §4.5). Native path via
// NativeBatchCreator if available; otherwise the facade wraps the
// whole batch in the transaction
// "<collection>.gstore.default.createEach" and iterates Create
// sequentially, so that duplicate-prone batches from concurrent callers
// don't interleave. A failed Create aborts the rest of the batch.
func (f *Facade) CreateEach(ctx context.Context, collection string, valuesList []types.Record) ([]types.Record, error) {
	if f.nativeBatch != nil {
		return f.nativeBatch.CreateEach(ctx, collection, valuesList)
	}
	if err := f.ensureTransactionCollection(ctx); err != nil {
		return nil, err
	}

	name := transactionName(collection, "createEach")
	var result []types.Record
	var opErr error
	txErr := f.lockMgr.Transaction(ctx, name, func(lockErr error, unlock lock.UnlockFunc) {
		if lockErr != nil {
			opErr = lockErr
			return
		}
		defer unlock()

		created := make([]types.Record, 0, len(valuesList))
		for _, values := range valuesList {
			rec, err := f.Create(ctx, collection, values)
			if err != nil {
				opErr = err
				return
			}
			created = append(created, rec)
		}
		result = created
	}, nil)
	if txErr != nil {
		return nil, txErr
	}
	return result, opErr
}

// FindOrCreateEach runs FindOrCreate for each (criteria, values) pair
// under the same transaction wrapper, analogous to CreateEach (spec
// §4.5).
func (f *Facade) FindOrCreateEach(ctx context.Context, collection string, criterias []any, valuesList []types.Record) ([]types.Record, error) {
	if f.nativeFOCEach != nil {
		normalized := make([]*types.Criterion, len(criterias))
		for i, raw := range criterias {
			c, err := criteria.Normalize(raw)
			if err != nil {
				return nil, err
			}
			normalized[i] = c
		}
		return f.nativeFOCEach.FindOrCreateEach(ctx, collection, normalized, valuesList)
	}
	if err := f.ensureTransactionCollection(ctx); err != nil {
		return nil, err
	}

	name := transactionName(collection, "findOrCreateEach")
	var result []types.Record
	var opErr error
	txErr := f.lockMgr.Transaction(ctx, name, func(lockErr error, unlock lock.UnlockFunc) {
		if lockErr != nil {
			opErr = lockErr
			return
		}
		defer unlock()

		out := make([]types.Record, 0, len(criterias))
		for i, raw := range criterias {
			var values types.Record
			if i < len(valuesList) {
				values = valuesList[i]
			}
			rec, err := f.findOrCreateNoLock(ctx, collection, raw, values)
			if err != nil {
				opErr = err
				return
			}
			out = append(out, rec)
		}
		result = out
	}, nil)
	if txErr != nil {
		return nil, txErr
	}
	return result, opErr
}

// findOrCreateNoLock is FindOrCreate's body without its own locking,
// used by FindOrCreateEach so the whole batch runs under one
// transaction rather than nesting one per element.
func (f *Facade) findOrCreateNoLock(ctx context.Context, collection string, rawCriteria any, values types.Record) (types.Record, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return nil, err
	}
	if values == nil {
		values = types.Record(c.Where)
	}
	found, err := f.Find(ctx, collection, c)
	if err != nil {
		return nil, err
	}
	if found != nil {
		return found, nil
	}
	return f.Create(ctx, collection, values)
}
