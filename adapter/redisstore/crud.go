package redisstore

import (
	"context"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
	"github.com/redis/go-redis/v9"
)

// Create assigns the next id via INCR, stores values as a hash keyed
// by collection:id, and indexes the new id into the collection's
// sorted set (scored by id, giving FIFO iteration for free).
func (s *Store) Create(ctx context.Context, collection string, values types.Record) (types.Record, error) {
	attrs, err := s.Describe(ctx, collection)
	if err != nil {
		return nil, err
	}
	if attrs == nil {
		return nil, types.ErrNoSuchCollection
	}

	id, err := s.rdb.Incr(ctx, s.seqKey(collection)).Result()
	if err != nil {
		return nil, errors.Wrapf(err, "redisstore: create in %q: assign id", collection)
	}

	row := values.Clone()
	row["id"] = id

	fields := make(map[string]any, len(row))
	for k, v := range row {
		enc, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		fields[k] = enc
	}
	recordKey := s.recordKey(collection, id)
	if err := s.rdb.HSet(ctx, recordKey, fields).Err(); err != nil {
		return nil, errors.Wrapf(err, "redisstore: create in %q: write fields", collection)
	}
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, recordKey, s.ttl).Err(); err != nil {
			return nil, errors.Wrapf(err, "redisstore: create in %q: set expiry", collection)
		}
	}
	if err := s.rdb.ZAdd(ctx, s.idsKey(collection), redis.Z{Score: float64(id), Member: strconv.FormatInt(id, 10)}).Err(); err != nil {
		return nil, errors.Wrapf(err, "redisstore: create in %q: index id", collection)
	}
	return row, nil
}

// findAll reads every record in collection in id order, decoded
// against attrs, without filtering — the shared scan helper for
// Find/Count/Update/Destroy.
func (s *Store) findAll(ctx context.Context, collection string) ([]int64, []types.Record, types.Attributes, error) {
	attrs, err := s.Describe(ctx, collection)
	if err != nil {
		return nil, nil, nil, err
	}
	if attrs == nil {
		return nil, nil, nil, types.ErrNoSuchCollection
	}

	idStrs, err := s.rdb.ZRange(ctx, s.idsKey(collection), 0, -1).Result()
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "redisstore: scan %q: list ids", collection)
	}

	ids := make([]int64, 0, len(idStrs))
	records := make([]types.Record, 0, len(idStrs))
	for _, idStr := range idStrs {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		raw, err := s.rdb.HGetAll(ctx, s.recordKey(collection, id)).Result()
		if err != nil {
			return nil, nil, nil, errors.Wrapf(err, "redisstore: scan %q: read %d", collection, id)
		}
		if len(raw) == 0 {
			continue // index entry outlived its record; tolerate and skip
		}
		rec, err := decodeRecord(raw, attrs)
		if err != nil {
			return nil, nil, nil, err
		}
		ids = append(ids, id)
		records = append(records, rec)
	}
	return ids, records, attrs, nil
}

func decodeRecord(raw map[string]string, attrs types.Attributes) (types.Record, error) {
	rec := make(types.Record, len(raw))
	for name, s := range raw {
		attr, ok := attrs[name]
		if !ok {
			attr = types.Attribute{Name: name}
		}
		v, err := decodeValue(s, attr)
		if err != nil {
			return nil, errors.Wrapf(err, "redisstore: decode field %q", name)
		}
		rec[name] = v
	}
	return rec, nil
}

// filterAndSort applies criteria's equality where-clause, sort, and
// pagination to an already-decoded, id-ordered record set.
func filterAndSort(ids []int64, records []types.Record, criteria *types.Criterion) ([]int64, []types.Record, error) {
	if criteria != nil && criteria.Comparator != nil {
		return nil, nil, types.ErrUnsupportedComparator
	}

	outIDs := make([]int64, 0, len(records))
	out := make([]types.Record, 0, len(records))
	for i, rec := range records {
		if criteria.HasWhere() && !equalWhere(rec, criteria.Where) {
			continue
		}
		outIDs = append(outIDs, ids[i])
		out = append(out, rec)
	}

	if criteria != nil && len(criteria.SortOrder) > 0 {
		sort.SliceStable(out, func(a, b int) bool {
			for _, name := range criteria.SortOrder {
				av, bv := out[a][name], out[b][name]
				cmp := compareValues(av, bv)
				if cmp == 0 {
					continue
				}
				if criteria.Sort[name] == types.Desc {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if criteria == nil {
		return outIDs, out, nil
	}
	skip := 0
	if criteria.Skip != nil {
		skip = *criteria.Skip
	} else if criteria.Offset != nil {
		skip = *criteria.Offset
	}
	if skip > len(out) {
		skip = len(out)
	}
	outIDs, out = outIDs[skip:], out[skip:]
	if criteria.Limit != nil && *criteria.Limit < len(out) {
		out = out[:*criteria.Limit]
		outIDs = outIDs[:*criteria.Limit]
	}
	return outIDs, out, nil
}

func equalWhere(rec types.Record, where map[string]any) bool {
	for k, want := range where {
		got, ok := rec[k]
		if !ok || !equalLoose(got, want) {
			return false
		}
	}
	return true
}

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

func compareValues(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1
		case as > bs:
			return 1
		default:
			return 0
		}
	}
	return 0
}

// Find returns every record in collection matching criteria.
func (s *Store) Find(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	ids, records, _, err := s.findAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	_, out, err := filterAndSort(ids, records, criteria)
	return out, err
}

// Count reports how many records in collection match criteria.
func (s *Store) Count(ctx context.Context, collection string, criteria *types.Criterion) (int64, error) {
	recs, err := s.Find(ctx, collection, criteria)
	if err != nil {
		return 0, err
	}
	return int64(len(recs)), nil
}

// Update applies values to every record matching criteria and returns
// the updated rows.
func (s *Store) Update(ctx context.Context, collection string, criteria *types.Criterion, values types.Record) ([]types.Record, error) {
	ids, records, attrs, err := s.findAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	matchIDs, _, err := filterAndSort(ids, records, criteria)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(values))
	for k, v := range values {
		enc, err := encodeValue(v)
		if err != nil {
			return nil, err
		}
		fields[k] = enc
	}
	out := make([]types.Record, 0, len(matchIDs))
	for _, id := range matchIDs {
		if err := s.rdb.HSet(ctx, s.recordKey(collection, id), fields).Err(); err != nil {
			return nil, errors.Wrapf(err, "redisstore: update %q: write %d", collection, id)
		}
		raw, err := s.rdb.HGetAll(ctx, s.recordKey(collection, id)).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "redisstore: update %q: read %d", collection, id)
		}
		rec, err := decodeRecord(raw, attrs)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Destroy deletes every record matching criteria and returns the rows
// as they were immediately before deletion.
func (s *Store) Destroy(ctx context.Context, collection string, criteria *types.Criterion) ([]types.Record, error) {
	ids, records, _, err := s.findAll(ctx, collection)
	if err != nil {
		return nil, err
	}
	matchIDs, matchRecs, err := filterAndSort(ids, records, criteria)
	if err != nil {
		return nil, err
	}
	for _, id := range matchIDs {
		if err := s.rdb.Del(ctx, s.recordKey(collection, id)).Err(); err != nil {
			return nil, errors.Wrapf(err, "redisstore: destroy %q: delete %d", collection, id)
		}
		if err := s.rdb.ZRem(ctx, s.idsKey(collection), strconv.FormatInt(id, 10)).Err(); err != nil {
			return nil, errors.Wrapf(err, "redisstore: destroy %q: unindex %d", collection, id)
		}
	}
	return matchRecs, nil
}
