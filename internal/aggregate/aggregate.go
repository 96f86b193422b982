// =============================================================================
// IBGE to MagPie Downscaler - Aggregator
// =============================================================================
//
// This module sums redistributed rows by their output key: (grid cell, year)
// for livestock, (grid cell, year, category) for crops and forestry.
//
// NULL POLICY (null-ignore):
//   Invalid values are skipped only here, at the final summation. Groups
//   whose every value is invalid produce no output row. This is the single
//   place in the pipeline where a null behaves like a zero.
//
// DERIVED CATEGORIES:
//   Forestry output carries a "timber" roll-up per (cell, year), the sum of
//   the wood and woodfuel rows, appended alongside the granular rows. A base
//   category absent for a key contributes zero to the roll-up. Consumers
//   summing "all categories" must not double-count the roll-up.
//
// =============================================================================

package aggregate

import (
	"sort"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// key identifies one output group.
type key struct {
	CellID   string
	Year     int
	Category string
}

// Sum groups redistributed rows by (cell, year, category) and sums their
// values with null-ignoring semantics. The result is sorted by cell, year
// and category so output is deterministic regardless of input order.
func Sum(rows []types.RedistributedRow) []types.OutputRow {
	totals := make(map[key]float64)

	for _, row := range rows {
		if !row.Value.Valid {
			continue
		}
		k := key{CellID: row.CellID, Year: row.Year, Category: row.Category}
		totals[k] += row.Value.Float64
	}

	out := make([]types.OutputRow, 0, len(totals))
	for k, total := range totals {
		out = append(out, types.OutputRow{
			CellID:   k.CellID,
			Year:     k.Year,
			Category: k.Category,
			Value:    total,
		})
	}

	sortRows(out)
	return out
}

// AppendDerived computes the configured roll-up categories from aggregated
// rows and returns the union of base rows and derived rows, re-sorted. For
// each (cell, year) key, a derived category is the sum of its source
// categories, treating an absent source as zero.
func AppendDerived(rows []types.OutputRow, derived []config.DerivedCategory) []types.OutputRow {
	if len(derived) == 0 {
		return rows
	}

	out := rows
	for _, d := range derived {
		sources := make(map[string]bool, len(d.Sum))
		for _, s := range d.Sum {
			sources[s] = true
		}

		totals := make(map[key]float64)
		seen := make(map[key]bool)
		for _, row := range rows {
			if !sources[row.Category] {
				continue
			}
			k := key{CellID: row.CellID, Year: row.Year}
			totals[k] += row.Value
			seen[k] = true
		}

		for k := range seen {
			out = append(out, types.OutputRow{
				CellID:   k.CellID,
				Year:     k.Year,
				Category: d.Name,
				Value:    totals[k],
			})
		}
	}

	sortRows(out)
	return out
}

// sortRows orders output rows by cell, year, category.
func sortRows(rows []types.OutputRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].CellID != rows[j].CellID {
			return rows[i].CellID < rows[j].CellID
		}
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Category < rows[j].Category
	})
}
