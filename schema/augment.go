// Package schema implements the attribute augmenter that fills in
// implicit columns (id/createdAt/updatedAt) and the alter schema diff
// that reconciles a collection's live attributes against a target set.
package schema

import (
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
)

// Augment ensures every adapter sees a uniform attribute set: it
// injects an id primary key if none is declared, injects createdAt /
// updatedAt iff the corresponding config flags are set, and sets each
// attribute's Name from its key. It takes already-typed Attributes, so
// it expands no string shorthands; ExpandShorthand does that.
func Augment(attrs types.Attributes, cfg types.Config) types.Attributes {
	out := make(types.Attributes, len(attrs)+3)
	for name, a := range attrs {
		a.Name = name
		out[name] = a
	}

	hasPrimary := false
	for _, a := range out {
		if a.Primary {
			hasPrimary = true
			break
		}
	}
	if !hasPrimary {
		if _, ok := out[consts.AttrID]; !ok {
			out[consts.AttrID] = types.Attribute{Name: consts.AttrID, Type: consts.AttrInt, Primary: true}
		}
	}

	if cfg.CreatedAt {
		if _, ok := out[consts.AttrCreatedAt]; !ok {
			out[consts.AttrCreatedAt] = types.Attribute{Name: consts.AttrCreatedAt, Type: consts.AttrTime}
		}
	}
	if cfg.UpdatedAt {
		if _, ok := out[consts.AttrUpdatedAt]; !ok {
			out[consts.AttrUpdatedAt] = types.Attribute{Name: consts.AttrUpdatedAt, Type: consts.AttrTime}
		}
	}

	return out
}

// ExpandShorthand turns a bare type name ("string") into the full
// Attribute descriptor. Callers building Attributes from a
// user-declared definition map (where a value may be either a string
// or a struct) should route string values through this first.
func ExpandShorthand(name string, shorthand consts.AttrType) types.Attribute {
	return types.Attribute{Name: name, Type: shorthand}
}
