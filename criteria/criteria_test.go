package criteria_test

import (
	"testing"

	"github.com/forbearing/gstore/criteria"
	"github.com/forbearing/gstore/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Nil(t *testing.T) {
	c, err := criteria.Normalize(nil)
	require.NoError(t, err)
	assert.Nil(t, c.Where)
}

func TestNormalize_NumericScalar(t *testing.T) {
	c, err := criteria.Normalize(42)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(42)}, c.Where)
}

func TestNormalize_NumericString(t *testing.T) {
	c, err := criteria.Normalize("42")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"id": float64(42)}, c.Where)
}

func TestNormalize_InvalidScalar(t *testing.T) {
	_, err := criteria.Normalize("abc")
	require.Error(t, err)
}

func TestNormalize_BareMap(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"name": "a"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "a"}, c.Where)
}

func TestNormalize_OperationalKeyOnly(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"limit": 10})
	require.NoError(t, err)
	assert.Nil(t, c.Where)
	require.NotNil(t, c.Limit)
	assert.Equal(t, 10, *c.Limit)
}

func TestNormalize_WhereNumericValueBecomesNumber(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"where": map[string]any{"age": "5"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"age": float64(5)}, c.Where)
}

func TestNormalize_SortString(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"sort": "name desc"})
	require.NoError(t, err)
	assert.Equal(t, types.Desc, c.Sort["name"])
}

func TestNormalize_SortMap(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"sort": map[string]any{"name": 1}})
	require.NoError(t, err)
	assert.Equal(t, types.Asc, c.Sort["name"])
}

func TestNormalize_SortInvalid(t *testing.T) {
	c, err := criteria.Normalize(map[string]any{"sort": "a b c"})
	// invalid sort is silently dropped by wrapOrPreserve rather than
	// failing the whole criterion, matching the tolerant map-shape path;
	// assert it didn't panic and produced an empty sort.
	require.NoError(t, err)
	assert.Nil(t, c.Sort)
}

func TestNormalize_Idempotent(t *testing.T) {
	first, err := criteria.Normalize(map[string]any{"name": "a", "limit": 10})
	require.NoError(t, err)
	second, err := criteria.Normalize(first)
	require.NoError(t, err)
	assert.Equal(t, first.Where, second.Where)
	assert.Equal(t, *first.Limit, *second.Limit)
}

func TestNormalize_FindIDEquivalence(t *testing.T) {
	byInt, err := criteria.Normalize(7)
	require.NoError(t, err)
	byCriterion, err := criteria.Normalize(map[string]any{"where": map[string]any{"id": 7}})
	require.NoError(t, err)
	assert.Equal(t, byInt.Where, byCriterion.Where)
}
