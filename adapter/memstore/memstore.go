// Package memstore is a reference in-process Adapter implementation.
// It backs the facade and lock manager's own test suites and doubles as
// the minimal example of what a conforming adapter looks like. It
// implements the DDL and CRUD capability interfaces of package types
// (listed below), with a monotonically increasing id counter per
// collection so it satisfies types.MonotonicIDsCapable. It does not
// implement the lifecycle hooks, Alterer, or the native compound
// interfaces, so a Facade over it uses its own defaults for those.
package memstore

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/forbearing/gstore/types"
)

type collection struct {
	attrs   types.Attributes
	records map[int64]types.Record
	nextID  int64
}

// Store is a mutex-guarded map-of-maps adapter. Safe for concurrent use
// by multiple goroutines, which is what lets it stand in for "multiple
// processes sharing a backing store" in the lock manager's tests.
type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
	cfg         types.Config
}

var (
	_ types.Adapter                  = (*Store)(nil)
	_ types.Definer                  = (*Store)(nil)
	_ types.Describer                = (*Store)(nil)
	_ types.Dropper                  = (*Store)(nil)
	_ types.ColumnAlterer            = (*Store)(nil)
	_ types.Creator                  = (*Store)(nil)
	_ types.Finder                   = (*Store)(nil)
	_ types.Counter                  = (*Store)(nil)
	_ types.Updater                  = (*Store)(nil)
	_ types.Destroyer                = (*Store)(nil)
	_ types.MonotonicIDsCapable      = (*Store)(nil)
)

// New returns an empty Store. cfg is echoed back by Config() so the
// facade can read CreatedAt/UpdatedAt/TransactionWarningTimerMS from it.
func New(cfg types.Config) *Store {
	return &Store{collections: make(map[string]*collection), cfg: cfg}
}

func (s *Store) Identity() string    { return "memstore" }
func (s *Store) Config() types.Config { return s.cfg }
func (s *Store) MonotonicIDs() bool  { return true }

func (s *Store) Define(_ context.Context, name string, attrs types.Attributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{attrs: attrs.Clone(), records: make(map[int64]types.Record)}
	return nil
}

func (s *Store) Describe(_ context.Context, name string) (types.Attributes, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	return c.attrs.Clone(), nil
}

func (s *Store) Drop(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) AddAttribute(_ context.Context, name string, attr types.Attribute) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return types.ErrNoSuchCollection
	}
	c.attrs[attr.Name] = attr
	return nil
}

func (s *Store) RemoveAttribute(_ context.Context, name string, attr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return types.ErrNoSuchCollection
	}
	delete(c.attrs, attr)
	return nil
}

func (s *Store) Create(_ context.Context, name string, values types.Record) (types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, types.ErrNoSuchCollection
	}
	id := atomic.AddInt64(&c.nextID, 1)
	rec := values.Clone()
	rec["id"] = id
	c.records[id] = rec
	return rec.Clone(), nil
}

func (s *Store) Find(_ context.Context, name string, criteria *types.Criterion) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, types.ErrNoSuchCollection
	}

	ids := sortedIDs(c)
	out := make([]types.Record, 0, len(c.records))
	for _, id := range ids {
		rec := c.records[id]
		if matches(rec, criteria) {
			out = append(out, rec.Clone())
		}
	}
	return paginate(out, criteria), nil
}

func (s *Store) Count(ctx context.Context, name string, criteria *types.Criterion) (int64, error) {
	recs, err := s.Find(ctx, name, criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

func (s *Store) Update(_ context.Context, name string, criteria *types.Criterion, values types.Record) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, types.ErrNoSuchCollection
	}

	var out []types.Record
	for id, rec := range c.records {
		if !matches(rec, criteria) {
			continue
		}
		updated := rec.Clone()
		for k, v := range values {
			updated[k] = v
		}
		c.records[id] = updated
		out = append(out, updated.Clone())
	}
	return out, nil
}

func (s *Store) Destroy(_ context.Context, name string, criteria *types.Criterion) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, types.ErrNoSuchCollection
	}

	var out []types.Record
	for id, rec := range c.records {
		if !matches(rec, criteria) {
			continue
		}
		out = append(out, rec.Clone())
		delete(c.records, id)
	}
	return out, nil
}

func matches(rec types.Record, criteria *types.Criterion) bool {
	if criteria == nil || len(criteria.Where) == 0 {
		return true
	}
	for attr, want := range criteria.Where {
		got, ok := rec[attr]
		if !ok {
			return false
		}
		if !equalLoose(got, want) {
			return false
		}
	}
	return true
}

// equalLoose compares an int64-stored id field against a float64 query
// value the way criteria.Normalize produces it.
func equalLoose(got, want any) bool {
	if gf, ok := toFloat(got); ok {
		if wf, ok := toFloat(want); ok {
			return gf == wf
		}
	}
	return got == want
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func sortedIDs(c *collection) []int64 {
	ids := make([]int64, 0, len(c.records))
	for id := range c.records {
		ids = append(ids, id)
	}
	// Simple insertion sort is fine: memstore collections are small
	// (tests and the reserved transaction collection), and this keeps
	// Find's ordering deterministic by id ascending, matching the Lock
	// Manager's assumption that id order == insertion order.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids
}

func paginate(recs []types.Record, criteria *types.Criterion) []types.Record {
	if criteria == nil {
		return recs
	}
	skip := 0
	if criteria.Skip != nil {
		skip = *criteria.Skip
	} else if criteria.Offset != nil {
		skip = *criteria.Offset
	}
	if skip > 0 {
		if skip >= len(recs) {
			return nil
		}
		recs = recs[skip:]
	}
	if criteria.Limit != nil && *criteria.Limit >= 0 && *criteria.Limit < len(recs) {
		recs = recs[:*criteria.Limit]
	}
	return recs
}
