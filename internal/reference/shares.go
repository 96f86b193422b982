// =============================================================================
// IBGE to MagPie Downscaler - Grid-Share Reference
// =============================================================================
//
// This module loads the municipality-to-grid-cell share table: for each
// municipality, the list of grid cells overlapping it together with the
// fractional share of the municipality's value assigned to each cell. The
// shares are precomputed upstream from area overlays; this pipeline performs
// no spatial math of its own.
//
// The share table carries many auxiliary columns, so the columns of interest
// are located by header name as configured in GridShareConfig.
//
// =============================================================================

package reference

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
)

// Share assigns a fraction of a municipality's value to one grid cell.
type Share struct {
	// CellID is the grid-cell identifier (the "x.y.iso" key, idsbrazil).
	CellID string

	// Weight is the fractional share of the municipality assigned to the cell.
	Weight float64
}

// ShareTable maps a municipality code to its grid-cell shares. Shares for a
// municipality are expected to sum to 1.0; the pipeline does not enforce
// this (it is a precondition on the reference data, checked by the validate
// command).
type ShareTable map[int][]Share

// LoadShares loads the grid-share table from a CSV file.
func LoadShares(cfg config.GridShareConfig) (ShareTable, error) {
	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open grid-share file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read grid-share file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("grid-share file %s has no data rows", cfg.Path)
	}

	munCol, cellCol, shareCol, err := locateColumns(rows[0], cfg)
	if err != nil {
		return nil, err
	}

	table := make(ShareTable)
	for i, row := range rows[1:] {
		line := i + 2

		if isRowEmpty(row) {
			continue
		}
		if len(row) <= munCol || len(row) <= cellCol || len(row) <= shareCol {
			return nil, fmt.Errorf("grid-share line %d: too few columns", line)
		}

		munCode, err := strconv.Atoi(strings.TrimSpace(row[munCol]))
		if err != nil {
			return nil, fmt.Errorf("grid-share line %d: invalid municipality code %q",
				line, row[munCol])
		}

		weight, err := strconv.ParseFloat(strings.TrimSpace(row[shareCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("grid-share line %d: invalid share %q", line, row[shareCol])
		}

		table[munCode] = append(table[munCode], Share{
			CellID: strings.TrimSpace(row[cellCol]),
			Weight: weight,
		})
	}

	if len(table) == 0 {
		return nil, fmt.Errorf("grid-share file %s contains no shares", cfg.Path)
	}

	return table, nil
}

// locateColumns finds the configured columns in the header row.
func locateColumns(header []string, cfg config.GridShareConfig) (mun, cell, share int, err error) {
	mun, cell, share = -1, -1, -1

	for i, h := range header {
		switch strings.TrimSpace(h) {
		case cfg.MunicipalityColumn:
			mun = i
		case cfg.CellColumn:
			cell = i
		case cfg.ShareColumn:
			share = i
		}
	}

	if mun < 0 {
		return 0, 0, 0, fmt.Errorf("grid-share file is missing column %q", cfg.MunicipalityColumn)
	}
	if cell < 0 {
		return 0, 0, 0, fmt.Errorf("grid-share file is missing column %q", cfg.CellColumn)
	}
	if share < 0 {
		return 0, 0, 0, fmt.Errorf("grid-share file is missing column %q", cfg.ShareColumn)
	}

	return mun, cell, share, nil
}

// =============================================================================
// SHARE-SUM CHECK
// =============================================================================

// ShareSumViolation reports a municipality whose shares do not sum to ~1.0.
type ShareSumViolation struct {
	MunicipalityCode int
	Sum              float64
}

// CheckShareSums returns the municipalities whose shares deviate from 1.0 by
// more than tolerance, sorted by municipality code. The pipeline itself never
// enforces this invariant; the validate command reports violations so the
// precondition can be fixed upstream.
func (t ShareTable) CheckShareSums(tolerance float64) []ShareSumViolation {
	var violations []ShareSumViolation

	for munCode, shares := range t {
		sum := 0.0
		for _, s := range shares {
			sum += s.Weight
		}
		if math.Abs(sum-1.0) > tolerance {
			violations = append(violations, ShareSumViolation{
				MunicipalityCode: munCode,
				Sum:              sum,
			})
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		return violations[i].MunicipalityCode < violations[j].MunicipalityCode
	})

	return violations
}
