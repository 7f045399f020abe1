package types

// SortDirection is the canonical direction of a sort clause.
type SortDirection int

const (
	Asc  SortDirection = 1
	Desc SortDirection = -1
)

// Criterion is a normalized query descriptor. All fields are optional;
// the zero value means "no constraint on this axis". The facade passes
// every Criterion, including ones built by hand (as package lock and
// Facade.Find do), through criteria.Normalize before it reaches an
// adapter.
type Criterion struct {
	// Where maps an attribute name to either a scalar (equality) or a
	// structured predicate (map[string]any, e.g. {"<": 10}).
	Where map[string]any

	// Limit is the maximum number of records to return. Nil means
	// unbounded.
	Limit *int
	// Skip/Offset are synonyms kept distinct because callers may set
	// either; the facade treats them identically.
	Skip   *int
	Offset *int

	// Sort is the canonical ordering: attribute name -> Asc/Desc.
	// Iteration order over a map is undefined, so Facade/adapter code
	// that needs deterministic multi-key order should use SortOrder.
	Sort map[string]SortDirection
	// SortOrder records the attribute names of Sort in the order the
	// caller specified them, since map iteration order is not stable.
	SortOrder []string

	// Comparator holds an opaque ordering function when the caller
	// passed one instead of a mapping/string. Adapters that can't run
	// arbitrary comparators (e.g. a SQL backend) should reject a
	// Criterion with a non-nil Comparator via ErrUnsupportedComparator.
	Comparator func(a, b Record) bool
}

// HasWhere reports whether this criterion constrains any attribute.
func (c *Criterion) HasWhere() bool {
	return c != nil && len(c.Where) > 0
}
