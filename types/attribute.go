package types

import "github.com/forbearing/gstore/types/consts"

// Attribute is a named column within a collection. Two attributes are
// Equal iff every field matches; inequality drives alter's
// replace-in-place path (schema.Diff).
type Attribute struct {
	Name     string
	Type     consts.AttrType
	Primary  bool
	Unique   bool
	Required bool
}

// Equal reports whether two attributes describe the same column.
func (a Attribute) Equal(b Attribute) bool {
	return a.Name == b.Name &&
		a.Type == b.Type &&
		a.Primary == b.Primary &&
		a.Unique == b.Unique &&
		a.Required == b.Required
}

// Attributes is a collection's full attribute set, keyed by name.
type Attributes map[string]Attribute

// Clone returns a shallow copy safe for independent mutation.
func (a Attributes) Clone() Attributes {
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
