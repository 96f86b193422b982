package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

func row(cell string, year int, category string, value float64) types.RedistributedRow {
	return types.RedistributedRow{
		CellID:   cell,
		Year:     year,
		Category: category,
		Value:    types.Some(value),
	}
}

func TestSumGroupsByKey(t *testing.T) {
	rows := []types.RedistributedRow{
		row("A", 2010, "soybean", 60),
		row("A", 2010, "soybean", 40),
		row("A", 2011, "soybean", 5),
		row("B", 2010, "maize", 7),
	}

	out := Sum(rows)
	require.Len(t, out, 3)

	assert.Equal(t, types.OutputRow{CellID: "A", Year: 2010, Category: "soybean", Value: 100}, out[0])
	assert.Equal(t, types.OutputRow{CellID: "A", Year: 2011, Category: "soybean", Value: 5}, out[1])
	assert.Equal(t, types.OutputRow{CellID: "B", Year: 2010, Category: "maize", Value: 7}, out[2])
}

func TestSumIsOrderIndependent(t *testing.T) {
	rows := []types.RedistributedRow{
		row("A", 2010, "soybean", 1),
		row("A", 2010, "soybean", 2),
		row("B", 2010, "soybean", 3),
		row("A", 2011, "maize", 4),
		row("B", 2011, "maize", 5),
	}

	expected := Sum(rows)

	shuffled := make([]types.RedistributedRow, len(rows))
	copy(shuffled, rows)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, expected, Sum(shuffled))
	}
}

func TestSumIgnoresInvalidValues(t *testing.T) {
	rows := []types.RedistributedRow{
		row("A", 2010, "wood", 10),
		{CellID: "A", Year: 2010, Category: "wood", Value: types.Null()},
		{CellID: "B", Year: 2010, Category: "wood", Value: types.Null()},
	}

	out := Sum(rows)
	// The invalid value is skipped at summation; a group with only invalid
	// values produces no output row.
	require.Len(t, out, 1)
	assert.Equal(t, 10.0, out[0].Value)
	assert.Equal(t, "A", out[0].CellID)
}

func TestAppendDerivedTimberRollup(t *testing.T) {
	base := []types.OutputRow{
		{CellID: "A", Year: 2010, Category: "wood", Value: 30},
		{CellID: "A", Year: 2010, Category: "woodfuel", Value: 12},
		{CellID: "A", Year: 2011, Category: "wood", Value: 5},
	}

	derived := []config.DerivedCategory{{Name: "timber", Sum: []string{"wood", "woodfuel"}}}
	out := AppendDerived(base, derived)
	require.Len(t, out, 5)

	timber := map[int]float64{}
	for _, r := range out {
		if r.Category == "timber" {
			timber[r.Year] = r.Value
		}
	}

	assert.Equal(t, 42.0, timber[2010])
	// A missing base category contributes zero to the roll-up.
	assert.Equal(t, 5.0, timber[2011])
}

func TestAppendDerivedWithoutConfigIsNoop(t *testing.T) {
	base := []types.OutputRow{{CellID: "A", Year: 2010, Category: "wood", Value: 1}}
	assert.Equal(t, base, AppendDerived(base, nil))
}
