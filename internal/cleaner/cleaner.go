// =============================================================================
// IBGE to MagPie Downscaler - Record Cleaner
// =============================================================================
//
// This module normalizes raw fact-table rows into CleanRecords: positional
// fields are renamed to semantic ones, sentinel strings are substituted, and
// codes are coerced to their proper types.
//
// SENTINEL POLICY (zero-fill):
//   SIDRA publishes "-" for values that are not available and "..." for
//   values that are not applicable. Both become 0 before numeric coercion.
//   This is a deliberate policy choice: zero-filling here keeps downstream
//   summation consistent, where propagating nulls from this step would drop
//   them unevenly across the pipelines.
//
// COERCION POLICY (fail fast):
//   A value, municipality code or year that cannot be coerced is fatal for
//   the whole run. Skipping bad rows would hide upstream format changes.
//
// =============================================================================

package cleaner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/magpie-brazil/ibge2magpie/internal/sidra"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// Sentinel strings used by SIDRA for missing data.
const (
	SentinelNotAvailable  = "-"
	SentinelNotApplicable = "..."
)

// Clean converts raw fact-table rows into CleanRecords.
func Clean(rows []sidra.Row) ([]types.CleanRecord, error) {
	records := make([]types.CleanRecord, 0, len(rows))

	for _, row := range rows {
		record, err := cleanRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// cleanRow converts a single raw row.
func cleanRow(row sidra.Row) (types.CleanRecord, error) {
	munCode, err := strconv.Atoi(strings.TrimSpace(row.Fields[sidra.FieldMunicipalityCode]))
	if err != nil {
		return types.CleanRecord{}, fmt.Errorf("line %d: invalid municipality code %q",
			row.Line, row.Fields[sidra.FieldMunicipalityCode])
	}

	year, err := strconv.Atoi(strings.TrimSpace(row.Fields[sidra.FieldYear]))
	if err != nil {
		return types.CleanRecord{}, fmt.Errorf("line %d: invalid year %q",
			row.Line, row.Fields[sidra.FieldYear])
	}

	value, err := coerceValue(row.Fields[sidra.FieldValue])
	if err != nil {
		return types.CleanRecord{}, fmt.Errorf("line %d: %w", row.Line, err)
	}

	return types.CleanRecord{
		MunicipalityCode: munCode,
		Category:         strings.TrimSpace(row.Fields[sidra.FieldProductName]),
		Year:             year,
		Value:            value,
	}, nil
}

// coerceValue applies the sentinel zero-fill policy and parses the quantity.
func coerceValue(raw string) (types.Value, error) {
	raw = strings.TrimSpace(raw)

	switch raw {
	case SentinelNotAvailable, SentinelNotApplicable:
		return types.Some(0), nil
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.Null(), fmt.Errorf("cannot coerce value %q to a number", raw)
	}

	return types.Some(f), nil
}
