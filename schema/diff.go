package schema

import "github.com/forbearing/gstore/types"

// Diff is the result of comparing a collection's current attribute set
// against a target one.
type Diff struct {
	// Add is the set of attributes to add: present in target but
	// absent from current, plus attributes whose definition changed
	// (changed attributes are dropped and re-added).
	Add types.Attributes
	// Remove is the set of attributes to remove: present in current
	// but absent from target, plus attributes whose definition
	// changed.
	Remove types.Attributes
}

// Compute implements a "drop then re-add" diff: a changed attribute
// definition is reported in both Remove and Add rather than as an
// in-place alter. Ordering between the two resulting sets is the
// caller's responsibility (facade.Alter applies all adds before any
// removes).
func Compute(current, target types.Attributes) Diff {
	add := make(types.Attributes)
	remove := make(types.Attributes)

	for name, t := range target {
		c, existed := current[name]
		switch {
		case !existed:
			add[name] = t
		case !c.Equal(t):
			// Changed definition: drop the old shape, add the new one.
			add[name] = t
			remove[name] = c
		}
	}
	for name, c := range current {
		if _, stillWanted := target[name]; !stillWanted {
			remove[name] = c
		}
	}

	return Diff{Add: add, Remove: remove}
}
