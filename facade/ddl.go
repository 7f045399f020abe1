package facade

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/schema"
	"github.com/forbearing/gstore/types"
)

// Define augments the given attribute definition, checks that the
// collection does not already exist, then forwards to the adapter's
// Definer if present.
func (f *Facade) Define(ctx context.Context, collection string, attrs types.Attributes) error {
	augmented := schema.Augment(attrs, f.cfg)

	existing, err := f.Describe(ctx, collection)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Wrapf(types.ErrCollectionExists, "collection %q", collection)
	}

	if f.definer != nil {
		if err := f.definer.Define(ctx, collection, augmented); err != nil {
			return err
		}
	}
	f.collections[collection] = true
	return nil
}

// Describe returns the collection's attributes, or (nil, nil) if it
// does not exist. Pass-through with a permissive default:
// an adapter that doesn't implement Describer is assumed to have no
// pre-existing schema to discover.
func (f *Facade) Describe(ctx context.Context, collection string) (types.Attributes, error) {
	if f.describer == nil {
		return nil, nil
	}
	return f.describer.Describe(ctx, collection)
}

// Drop destroys a collection. Pass-through; no-op default.
func (f *Facade) Drop(ctx context.Context, collection string) error {
	delete(f.collections, collection)
	if f.dropper == nil {
		return nil
	}
	return f.dropper.Drop(ctx, collection)
}

// Alter evolves collection's schema to targetAttrs (spec §4.3).
//
// 1. If the adapter implements Alterer, delegate — it is trusted to
//    apply the change atomically by whatever means it likes.
// 2. Else if the adapter implements ColumnAlterer, describe the
//    current schema, compute the add/remove diff (schema.Compute), run
//    every AddAttribute concurrently, wait for all of them, then run
//    every RemoveAttribute concurrently. Adds always complete before
//    removes begin; there is no ordering guarantee within a phase.
// 3. Else: no-op. The implementor explicitly refuses to guess how to
//    evolve schemas without risking data loss.
func (f *Facade) Alter(ctx context.Context, collection string, targetAttrs types.Attributes) error {
	target := schema.Augment(targetAttrs, f.cfg)

	if f.alterer != nil {
		return f.alterer.Alter(ctx, collection, target)
	}

	if f.colAlterer == nil {
		return nil
	}

	current, err := f.Describe(ctx, collection)
	if err != nil {
		return err
	}
	if current == nil {
		current = types.Attributes{}
	}

	diff := schema.Compute(current, target)

	if err := f.runConcurrently(len(diff.Add), func(i int, name string) error {
		return f.colAlterer.AddAttribute(ctx, collection, diff.Add[name])
	}, keys(diff.Add)); err != nil {
		return err
	}

	return f.runConcurrently(len(diff.Remove), func(i int, name string) error {
		return f.colAlterer.RemoveAttribute(ctx, collection, name)
	}, keys(diff.Remove))
}

func keys(attrs types.Attributes) []string {
	out := make([]string, 0, len(attrs))
	for k := range attrs {
		out = append(out, k)
	}
	return out
}

// runConcurrently fans a per-name operation out over goroutines and
// joins on the first error, matching the teacher's
// async.forEach-over-WaitGroup translation (spec §9 "Cooperative
// callbacks -> structured concurrency").
func (f *Facade) runConcurrently(n int, op func(i int, name string) error, names []string) error {
	if n == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i, name := range names {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			errs[i] = op(i, name)
		}(i, name)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
