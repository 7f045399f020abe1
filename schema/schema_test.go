package schema_test

import (
	"testing"

	"github.com/forbearing/gstore/schema"
	"github.com/forbearing/gstore/types"
	"github.com/forbearing/gstore/types/consts"
	"github.com/stretchr/testify/assert"
)

func TestAugment_InjectsIDAndTimestamps(t *testing.T) {
	attrs := types.Attributes{"name": {Type: consts.AttrString}}
	out := schema.Augment(attrs, types.Config{CreatedAt: true, UpdatedAt: true})

	require := assert.New(t)
	require.Contains(out, "id")
	require.True(out["id"].Primary)
	require.Contains(out, "createdAt")
	require.Contains(out, "updatedAt")
}

func TestAugment_SkipsIDWhenPrimaryDeclared(t *testing.T) {
	attrs := types.Attributes{"sku": {Type: consts.AttrString, Primary: true}}
	out := schema.Augment(attrs, types.Config{})
	assert.NotContains(t, out, "id")
}

func TestAugment_NoTimestampsWhenDisabled(t *testing.T) {
	out := schema.Augment(types.Attributes{}, types.Config{})
	assert.NotContains(t, out, "createdAt")
	assert.NotContains(t, out, "updatedAt")
}

func TestDiff_AddRemoveAndUnchanged(t *testing.T) {
	current := types.Attributes{
		"a": {Name: "a", Type: consts.AttrString},
		"b": {Name: "b", Type: consts.AttrInt},
	}
	target := types.Attributes{
		"a": {Name: "a", Type: consts.AttrString},
		"c": {Name: "c", Type: consts.AttrBool},
	}
	d := schema.Compute(current, target)
	assert.Contains(t, d.Add, "c")
	assert.Contains(t, d.Remove, "b")
	assert.NotContains(t, d.Add, "a")
	assert.NotContains(t, d.Remove, "a")
}

func TestDiff_ChangedAttributeDropsAndReadds(t *testing.T) {
	current := types.Attributes{"a": {Name: "a", Type: consts.AttrString}}
	target := types.Attributes{"a": {Name: "a", Type: consts.AttrInt}}
	d := schema.Compute(current, target)
	assert.Contains(t, d.Add, "a")
	assert.Contains(t, d.Remove, "a")
}
