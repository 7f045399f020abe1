package facade

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/criteria"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
)

// Create stamps createdAt/updatedAt (when enabled) and forwards to the
// adapter. Fails fast if the adapter has no Creator (spec §4.4). No
// validation is performed at this layer.
func (f *Facade) Create(ctx context.Context, collection string, values types.Record) (types.Record, error) {
	if f.creator == nil {
		return nil, types.ErrNoCreateMethod
	}

	stamped := values.Clone()
	now := time.Now()
	if f.cfg.CreatedAt {
		stamped[consts.AttrCreatedAt] = now
	}
	if f.cfg.UpdatedAt {
		stamped[consts.AttrUpdatedAt] = now
	}

	return f.creator.Create(ctx, collection, stamped)
}

// FindAll normalizes criteria and delegates to the adapter's Finder.
func (f *Facade) FindAll(ctx context.Context, collection string, rawCriteria any) ([]types.Record, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return nil, err
	}
	if f.finder == nil {
		return nil, nil
	}
	return f.finder.Find(ctx, collection, c)
}

// Find is the single-record selector (spec §4.4): it defaults to
// {limit: 1} when no criteria is given, then returns nothing for an
// empty result, the sole record for exactly one match, or
// ErrTooManyRecords for more than one. It must never silently pick one
// of many.
func (f *Facade) Find(ctx context.Context, collection string, rawCriteria any) (types.Record, error) {
	if rawCriteria == nil {
		one := 1
		rawCriteria = &types.Criterion{Limit: &one}
	}

	recs, err := f.FindAll(ctx, collection, rawCriteria)
	if err != nil {
		return nil, err
	}
	switch len(recs) {
	case 0:
		return nil, nil
	case 1:
		return recs[0], nil
	default:
		return nil, errors.Wrapf(types.ErrTooManyRecords, "find(%q)", collection)
	}
}

// Count uses the adapter's Counter when available, else falls back to
// fetching every matching record and returning the length.
func (f *Facade) Count(ctx context.Context, collection string, rawCriteria any) (int64, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return 0, err
	}
	if f.counter != nil {
		return f.counter.Count(ctx, collection, c)
	}
	recs, err := f.FindAll(ctx, collection, c)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

// Update normalizes criteria, stamps updatedAt when enabled, and
// delegates.
func (f *Facade) Update(ctx context.Context, collection string, rawCriteria any, values types.Record) ([]types.Record, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return nil, err
	}
	if f.updater == nil {
		return nil, nil
	}

	stamped := values.Clone()
	if f.cfg.UpdatedAt {
		stamped[consts.AttrUpdatedAt] = time.Now()
	}

	return f.updater.Update(ctx, collection, c, stamped)
}

// Destroy normalizes criteria and delegates.
func (f *Facade) Destroy(ctx context.Context, collection string, rawCriteria any) ([]types.Record, error) {
	c, err := criteria.Normalize(rawCriteria)
	if err != nil {
		return nil, err
	}
	if f.destroyer == nil {
		return nil, nil
	}
	return f.destroyer.Destroy(ctx, collection, c)
}
