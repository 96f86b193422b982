// =============================================================================
// IBGE to MagPie Downscaler - Spatial Redistributor
// =============================================================================
//
// This module redistributes municipality-level values onto the finer spatial
// grid. Each categorized record joins to the grid-share table on municipality
// code and fans out into one row per overlapping grid cell, with the value
// multiplied by the cell's fractional share.
//
// MISSING-SHARE POLICY (null-propagate):
//   A municipality absent from the share table has no grid cell to receive
//   its value. Such records are excluded from the output and counted; a
//   missing share is a data-completeness problem, not a true zero, so the
//   value is never zero-filled.
//
// =============================================================================

package redistribute

import (
	"github.com/magpie-brazil/ibge2magpie/internal/reference"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// Redistribute fans each record out onto the grid cells of its municipality.
// It returns the redistributed rows and the number of records dropped because
// their municipality is missing from the share table.
func Redistribute(records []types.CategorizedRecord, shares reference.ShareTable) ([]types.RedistributedRow, int) {
	rows := make([]types.RedistributedRow, 0, len(records))
	dropped := 0

	for _, r := range records {
		cells, ok := shares[r.MunicipalityCode]
		if !ok || len(cells) == 0 {
			dropped++
			continue
		}

		for _, cell := range cells {
			rows = append(rows, types.RedistributedRow{
				CellID:   cell.CellID,
				Year:     r.Year,
				Category: r.Category,
				Value:    r.Value.Scale(cell.Weight),
			})
		}
	}

	return rows, dropped
}
