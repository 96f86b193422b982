package reclass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

func clean(mun int, category string, year int, value float64) types.CleanRecord {
	return types.CleanRecord{
		MunicipalityCode: mun,
		Category:         category,
		Year:             year,
		Value:            types.Some(value),
	}
}

func TestTaxonomyJoinDropsUnmapped(t *testing.T) {
	policy := TaxonomyJoin{Mapping: map[string]string{
		"Soja (em grão)": "soybean",
	}}

	records := []types.CleanRecord{
		clean(1100015, "Soja (em grão)", 2010, 100),
		clean(1100015, "Cultura Rara", 2010, 50),
	}

	out, dropped := policy.Apply(records)
	require.Len(t, out, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, "soybean", out[0].Category)
	assert.Equal(t, types.Some(100.0), out[0].Value)
}

func TestHerdFilterKeepsOnlyConfiguredHerd(t *testing.T) {
	policy := HerdFilter{Keep: "Bovino"}

	records := []types.CleanRecord{
		clean(1100015, "Bovino", 2010, 50),
		clean(1100015, "Equino", 2010, 30),
	}

	out, dropped := policy.Apply(records)
	require.Len(t, out, 1)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, types.Some(50.0), out[0].Value)
	// Livestock output carries no category.
	assert.Empty(t, out[0].Category)
}

func TestEnumeratedMapAppliesFactors(t *testing.T) {
	policy := NewEnumeratedMap([]config.ProductMapping{
		{Source: "Lenha", Target: "woodfuel", Factor: 721},
		{Source: "Madeira em tora", Target: "wood", Factor: 350},
		{Source: "Carvão vegetal", Target: "woodfuel", Factor: 350},
	})

	records := []types.CleanRecord{
		clean(1100015, "Lenha", 2010, 2),
		clean(1100015, "Madeira em tora", 2010, 3),
		clean(1100015, "Carvão vegetal", 2010, 4),
	}

	out, dropped := policy.Apply(records)
	require.Len(t, out, 3)
	assert.Zero(t, dropped)

	assert.Equal(t, "woodfuel", out[0].Category)
	assert.Equal(t, types.Some(1442.0), out[0].Value)
	assert.Equal(t, "wood", out[1].Category)
	assert.Equal(t, types.Some(1050.0), out[1].Value)
	assert.Equal(t, "woodfuel", out[2].Category)
	assert.Equal(t, types.Some(1400.0), out[2].Value)
}

func TestEnumeratedMapDropsUnmappedProducts(t *testing.T) {
	policy := NewEnumeratedMap([]config.ProductMapping{
		{Source: "Lenha", Target: "woodfuel", Factor: 721},
	})

	out, dropped := policy.Apply([]types.CleanRecord{
		clean(1100015, "Castanha-do-pará", 2010, 10),
	})

	assert.Empty(t, out)
	assert.Equal(t, 1, dropped)
}

func TestScalePropagatesNull(t *testing.T) {
	v := types.Null().Scale(350)
	assert.False(t, v.Valid)
}

func TestApplyUnitBreaks(t *testing.T) {
	records := []types.CleanRecord{
		clean(1100015, "Banana (cacho)", 2000, 1000),
		clean(1100015, "Banana (cacho)", 2001, 1000),
		clean(1100015, "Soja (em grão)", 2000, 1000),
	}

	ApplyUnitBreaks(records, []config.UnitBreak{
		{Product: "Banana (cacho)", BeforeYear: 2001, Factor: 0.001},
	})

	// Only the matching product in years strictly before the break changes.
	assert.Equal(t, types.Some(1.0), records[0].Value)
	assert.Equal(t, types.Some(1000.0), records[1].Value)
	assert.Equal(t, types.Some(1000.0), records[2].Value)
}

func TestApplyUnitBreaksNoConfigIsNoop(t *testing.T) {
	records := []types.CleanRecord{clean(1100015, "Banana (cacho)", 2000, 7)}
	ApplyUnitBreaks(records, nil)
	assert.Equal(t, types.Some(7.0), records[0].Value)
}
