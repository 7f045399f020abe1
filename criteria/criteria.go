// Package criteria normalizes the heterogeneous shapes callers may pass
// as query criteria into one canonical types.Criterion.
package criteria

import (
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/gstore/types"
)

// operationalKeys are the keys whose presence in a map input means
// "this is already a criteria object", not "this is a where clause".
var operationalKeys = map[string]bool{
	"where":  true,
	"limit":  true,
	"skip":   true,
	"offset": true,
	"order":  true,
	"sort":   true,
}

// Normalize canonicalizes input into a *types.Criterion.
//
// Accepted shapes:
//   - nil -> {Where: nil}
//   - a positive finite number, or a numeric string -> {Where: {"id": n}}
//   - any other non-map scalar -> ErrInvalidCriteria
//   - a map lacking every operational key -> wrapped as {Where: input}
//   - a map with at least one operational key -> taken as-is
//
// Normalize(Normalize(c)) == Normalize(c): a *types.Criterion passed back
// in is returned unchanged (modulo the same rewrites applied below).
func Normalize(input any) (*types.Criterion, error) {
	switch v := input.(type) {
	case nil:
		return &types.Criterion{}, nil

	case *types.Criterion:
		if v == nil {
			return &types.Criterion{}, nil
		}
		return rewrite(cloneCriterion(v))

	case types.Criterion:
		return rewrite(cloneCriterion(&v))

	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		n, ok := toNonzeroFiniteNumber(v)
		if !ok || n < 0 {
			return nil, errors.WithStack(types.ErrInvalidCriteria)
		}
		return &types.Criterion{Where: map[string]any{"id": n}}, nil

	case string:
		if n, ok := parseNumericString(v); ok {
			return &types.Criterion{Where: map[string]any{"id": n}}, nil
		}
		return nil, errors.WithStack(types.ErrInvalidCriteria)

	case map[string]any:
		return rewrite(wrapOrPreserve(v))

	default:
		return nil, errors.WithStack(types.ErrInvalidCriteria)
	}
}

// wrapOrPreserve implements the map-shape rule: a map with no
// operational key is the where-clause itself; a map with at least one
// operational key is already a criteria object.
func wrapOrPreserve(m map[string]any) *types.Criterion {
	hasOperational := false
	for k := range m {
		if operationalKeys[k] {
			hasOperational = true
			break
		}
	}
	if !hasOperational {
		return &types.Criterion{Where: copyMap(m)}
	}

	c := &types.Criterion{}
	if w, ok := m["where"]; ok {
		if wm, ok := w.(map[string]any); ok {
			c.Where = copyMap(wm)
		} else if w != nil {
			// A scalar/number where value (e.g. {where: 5}) collapses
			// to the id-equality shape, same as a bare scalar input.
			if n, ok := toNonzeroFiniteNumber(w); ok {
				c.Where = map[string]any{"id": n}
			} else if s, ok := w.(string); ok {
				if n, ok := parseNumericString(s); ok {
					c.Where = map[string]any{"id": n}
				}
			}
		}
	}
	if l, ok := m["limit"]; ok {
		if n, ok := toInt(l); ok {
			c.Limit = &n
		}
	}
	if s, ok := m["skip"]; ok {
		if n, ok := toInt(s); ok {
			c.Skip = &n
		}
	}
	if o, ok := m["offset"]; ok {
		if n, ok := toInt(o); ok {
			c.Offset = &n
		}
	}
	// "order" is treated as a legacy synonym for "sort": if both are
	// present, sort wins.
	if ord, ok := m["order"]; ok && m["sort"] == nil {
		m["sort"] = ord
	}
	if sv, ok := m["sort"]; ok {
		sort, order, cmp, err := normalizeSort(sv)
		if err == nil {
			c.Sort, c.SortOrder, c.Comparator = sort, order, cmp
		}
	}
	return c
}

// rewrite applies the output-side rewrites that every Criterion,
// however it arrived, must satisfy: strip undefined-valued keys (nil in
// Go) and rewrite numeric-looking where values to numbers.
func rewrite(c *types.Criterion) (*types.Criterion, error) {
	if c.Where != nil {
		where := make(map[string]any, len(c.Where))
		for k, v := range c.Where {
			if v == nil {
				continue
			}
			if n, ok := toNonzeroFiniteNumber(v); ok {
				where[k] = n
				continue
			}
			if s, ok := v.(string); ok {
				if n, ok := parseNumericString(s); ok {
					where[k] = n
					continue
				}
			}
			where[k] = v
		}
		c.Where = where
	}
	return c, nil
}

// normalizeSort accepts a map[string]any of attr -> 1|-1, a two-word
// "<attr> asc|desc" string, or a func(a, b types.Record) bool
// comparator.
func normalizeSort(v any) (map[string]types.SortDirection, []string, func(a, b types.Record) bool, error) {
	switch s := v.(type) {
	case map[string]any:
		out := make(map[string]types.SortDirection, len(s))
		order := make([]string, 0, len(s))
		for attr, dir := range s {
			n, ok := toInt(dir)
			if !ok || (n != 1 && n != -1) {
				return nil, nil, nil, errors.WithStack(types.ErrInvalidCriteria)
			}
			out[attr] = types.SortDirection(n)
			order = append(order, attr)
		}
		return out, order, nil, nil

	case map[string]types.SortDirection:
		order := make([]string, 0, len(s))
		for attr := range s {
			order = append(order, attr)
		}
		return s, order, nil, nil

	case string:
		fields := strings.Fields(s)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, nil, nil, errors.WithStack(types.ErrInvalidCriteria)
		}
		attr := fields[0]
		dir := types.Asc
		if len(fields) == 2 {
			switch strings.ToLower(fields[1]) {
			case "asc":
				dir = types.Asc
			case "desc":
				dir = types.Desc
			default:
				return nil, nil, nil, errors.WithStack(types.ErrInvalidCriteria)
			}
		}
		return map[string]types.SortDirection{attr: dir}, []string{attr}, nil, nil

	case func(a, b types.Record) bool:
		return nil, nil, s, nil

	default:
		return nil, nil, nil, errors.WithStack(types.ErrInvalidCriteria)
	}
}

func cloneCriterion(c *types.Criterion) *types.Criterion {
	out := &types.Criterion{
		Limit:      c.Limit,
		Skip:       c.Skip,
		Offset:     c.Offset,
		Sort:       c.Sort,
		SortOrder:  c.SortOrder,
		Comparator: c.Comparator,
	}
	if c.Where != nil {
		out.Where = copyMap(c.Where)
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	}
	return 0, false
}

// toNonzeroFiniteNumber accepts any Go numeric type (not strings; see
// parseNumericString) and reports it as a float64 when it is nonzero
// and finite. Zero is excluded so that a zero-valued struct field isn't
// mistaken for an explicit id filter.
func toNonzeroFiniteNumber(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case int:
		f = float64(n)
	case int8:
		f = float64(n)
	case int16:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint8:
		f = float64(n)
	case uint16:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case float32:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, false
	}
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}
