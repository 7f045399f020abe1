package sqlstore

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	"gorm.io/gorm"
)

// scope applies criteria's where/sort/limit/offset to tx, mirroring
// memstore's equality-only matches()/paginate() pair (spec's query
// surface is deliberately narrow — full predicate/operator support is
// out of scope for the core, consistent across every adapter in this
// module).
func scope(tx *gorm.DB, collection string, criteria *types.Criterion) (*gorm.DB, error) {
	tx = tx.Table(collection)
	if criteria == nil {
		return tx, nil
	}
	if criteria.Comparator != nil {
		return nil, types.ErrUnsupportedComparator
	}
	if len(criteria.Where) > 0 {
		tx = tx.Where(map[string]any(criteria.Where))
	}
	for _, name := range criteria.SortOrder {
		dir := criteria.Sort[name]
		if dir == types.Desc {
			tx = tx.Order(quoteIdent(name) + " DESC")
		} else {
			tx = tx.Order(quoteIdent(name) + " ASC")
		}
	}
	if criteria.Limit != nil {
		tx = tx.Limit(*criteria.Limit)
	}
	skip := 0
	if criteria.Skip != nil {
		skip = *criteria.Skip
	} else if criteria.Offset != nil {
		skip = *criteria.Offset
	}
	if skip > 0 {
		tx = tx.Offset(skip)
	}
	return tx, nil
}

// Create inserts values into collection and returns the row as stored,
// including any column the database assigned (notably the primary
// key): gorm's map-based Create populates values in place for dialects
// that support RETURNING, which both sqlite (>=3.35) and postgres do.
func (s *Store) Create(ctx context.Context, collection string, values types.Record) (types.Record, error) {
	row := map[string]any(values.Clone())
	if err := s.conn(ctx).Table(collection).Create(row).Error; err != nil {
		return nil, errors.Wrapf(err, "sqlstore: create into %q", collection)
	}
	return types.Record(row), nil
}

// Find returns every record in collection matching criteria.
func (s *Store) Find(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	tx, err := scope(s.conn(ctx), collection, criteria)
	if err != nil {
		return nil, err
	}
	var rows []map[string]any
	if err := tx.Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "sqlstore: find in %q", collection)
	}
	return toRecords(rows), nil
}

// Count reports how many records in collection match criteria.
func (s *Store) Count(ctx context.Context, collection string, criteria *types.Criterion) (int64, error) {
	tx, err := scope(s.conn(ctx), collection, criteria)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "sqlstore: count in %q", collection)
	}
	return n, nil
}

// Update applies values to every record matching criteria and returns
// the updated rows.
func (s *Store) Update(ctx context.Context, collection string, criteria *types.Criterion, values types.Record) ([]types.Record, error) {
	tx, err := scope(s.conn(ctx), collection, criteria)
	if err != nil {
		return nil, err
	}
	matched, err := s.Find(ctx, collection, criteria)
	if err != nil {
		return nil, err
	}
	if err := tx.Updates(map[string]any(values)).Error; err != nil {
		return nil, errors.Wrapf(err, "sqlstore: update in %q", collection)
	}
	for _, rec := range matched {
		for k, v := range values {
			rec[k] = v
		}
	}
	return matched, nil
}

// Destroy deletes every record matching criteria and returns the rows
// as they were immediately before deletion.
func (s *Store) Destroy(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	victims, err := s.Find(ctx, collection, criteria)
	if err != nil {
		return nil, err
	}
	if len(victims) == 0 {
		return victims, nil
	}
	tx, err := scope(s.conn(ctx), collection, criteria)
	if err != nil {
		return nil, err
	}
	if err := tx.Delete(&struct{}{}).Error; err != nil {
		return nil, errors.Wrapf(err, "sqlstore: destroy in %q", collection)
	}
	return victims, nil
}

func toRecords(rows []map[string]any) []types.Record {
	out := make([]types.Record, len(rows))
	for i, r := range rows {
		out[i] = types.Record(r)
	}
	return out
}
