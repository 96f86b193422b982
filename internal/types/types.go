// =============================================================================
// IBGE to MagPie Downscaler - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple pipeline stages to
// avoid import cycles. Types defined here are used by:
//   - cleaner
//   - reclass
//   - redistribute
//   - aggregate
//   - writer
//
// NULL HANDLING:
//   The pipeline applies three distinct null policies, each encoded explicitly
//   rather than inferred from library behavior:
//     1. Zero-fill: the sentinel strings "-" (not available) and "..." (not
//        applicable) in raw fact tables become 0 during cleaning.
//     2. Null-propagate: a missing unit-conversion factor or a missing grid
//        share produces an invalid Value, never a zero.
//     3. Null-ignore: invalid Values are skipped only at the final summation
//        step in the aggregator.
//
// =============================================================================

package types

// =============================================================================
// NULL-AWARE VALUE
// =============================================================================

// Value is a null-aware float. It plays the role of database/sql.NullFloat64
// for pipeline quantities: an invalid Value marks data that must be excluded
// from aggregation rather than treated as zero.
type Value struct {
	// Float64 is the numeric quantity. Only meaningful when Valid is true.
	Float64 float64

	// Valid reports whether Float64 carries a real measurement.
	Valid bool
}

// Some returns a valid Value holding f.
func Some(f float64) Value {
	return Value{Float64: f, Valid: true}
}

// Null returns an invalid Value.
func Null() Value {
	return Value{}
}

// Scale multiplies a valid Value by factor. Scaling an invalid Value
// propagates the invalidity (null-propagate policy).
func (v Value) Scale(factor float64) Value {
	if !v.Valid {
		return Null()
	}
	return Some(v.Float64 * factor)
}

// =============================================================================
// PIPELINE RECORD TYPES
// =============================================================================

// CleanRecord is one fact observation after cleaning: semantic field names,
// sentinel substitution applied, and codes coerced to their proper types.
// Category still carries the source (IBGE) category name.
type CleanRecord struct {
	// MunicipalityCode is the IBGE 7-digit municipality code.
	MunicipalityCode int

	// Category is the source product or herd name as published by IBGE.
	Category string

	// Year is the reference year of the observation.
	Year int

	// Value is the measured quantity (planted area, herd count, production).
	Value Value
}

// CategorizedRecord is a fact observation after reclassification into the
// target taxonomy. Category holds the target (MagPie) category name; it is
// empty for the livestock domain, whose output carries no category column.
type CategorizedRecord struct {
	MunicipalityCode int
	Category         string
	Year             int
	Value            Value
}

// RedistributedRow is one fact observation assigned to a single grid cell.
// A CategorizedRecord fans out into one RedistributedRow per grid cell
// overlapping its municipality, with Value scaled by the cell's share.
type RedistributedRow struct {
	CellID   string
	Year     int
	Category string
	Value    Value
}

// OutputRow is one aggregated row of the final table: the summed value for a
// (grid cell, year[, category]) key.
type OutputRow struct {
	CellID   string
	Year     int
	Category string
	Value    float64
}
