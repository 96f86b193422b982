// =============================================================================
// IBGE to MagPie Downscaler - Category Reclassifier
// =============================================================================
//
// This module maps source (IBGE) product and herd categories onto the target
// (MagPie) taxonomy. Three policies exist, one per survey domain:
//
//   - TaxonomyJoin (PAM): inner join against the crop-taxonomy reference.
//     Source crops without a target category are dropped; the MagPie taxonomy
//     deliberately ignores minor crops, so exclusion is silent but counted.
//
//   - HerdFilter (PPM): keep a single herd category (Bovino by default) and
//     discard all others. The resulting records carry no category, matching
//     the categoryless livestock output schema.
//
//   - EnumeratedMap (PEVS): a fixed product map pairing each source product
//     with a target category and a unit-conversion factor applied by
//     multiplication. Products outside the map are dropped, never zero-filled.
//
// All policies report how many records they dropped so real data-loss
// regressions stay visible in the logs.
//
// =============================================================================

package reclass

import (
	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// Policy reclassifies cleaned records into target categories.
type Policy interface {
	// Apply maps records onto the target taxonomy. It returns the surviving
	// records and the number of records dropped by the policy.
	Apply(records []types.CleanRecord) ([]types.CategorizedRecord, int)
}

// =============================================================================
// TAXONOMY JOIN (PAM)
// =============================================================================

// TaxonomyJoin maps source crop names to target categories via a lookup
// table, with inner-join semantics.
type TaxonomyJoin struct {
	// Mapping is the source crop name -> target category table.
	Mapping map[string]string
}

// Apply keeps only records whose category resolves in the mapping.
func (p TaxonomyJoin) Apply(records []types.CleanRecord) ([]types.CategorizedRecord, int) {
	out := make([]types.CategorizedRecord, 0, len(records))
	dropped := 0

	for _, r := range records {
		target, ok := p.Mapping[r.Category]
		if !ok {
			dropped++
			continue
		}
		out = append(out, types.CategorizedRecord{
			MunicipalityCode: r.MunicipalityCode,
			Category:         target,
			Year:             r.Year,
			Value:            r.Value,
		})
	}

	return out, dropped
}

// =============================================================================
// HERD FILTER (PPM)
// =============================================================================

// HerdFilter keeps a single herd category and discards the rest.
type HerdFilter struct {
	// Keep is the herd category to retain, e.g. "Bovino".
	Keep string
}

// Apply keeps only records of the configured herd. The surviving records
// carry an empty category: livestock output has no category column.
func (p HerdFilter) Apply(records []types.CleanRecord) ([]types.CategorizedRecord, int) {
	out := make([]types.CategorizedRecord, 0, len(records))
	dropped := 0

	for _, r := range records {
		if r.Category != p.Keep {
			dropped++
			continue
		}
		out = append(out, types.CategorizedRecord{
			MunicipalityCode: r.MunicipalityCode,
			Year:             r.Year,
			Value:            r.Value,
		})
	}

	return out, dropped
}

// =============================================================================
// ENUMERATED MAP (PEVS)
// =============================================================================

// EnumeratedMap maps a fixed set of source products to target categories,
// applying a unit-conversion factor to each value.
type EnumeratedMap struct {
	// Products maps the source product name to its target category and factor.
	Products map[string]config.ProductMapping
}

// NewEnumeratedMap builds an EnumeratedMap from config product mappings.
func NewEnumeratedMap(mappings []config.ProductMapping) EnumeratedMap {
	products := make(map[string]config.ProductMapping, len(mappings))
	for _, m := range mappings {
		products[m.Source] = m
	}
	return EnumeratedMap{Products: products}
}

// Apply converts mapped products and drops the rest. A product outside the
// map has no category and no factor; the record is excluded rather than
// zero-filled, since a missing factor is not a zero quantity.
func (p EnumeratedMap) Apply(records []types.CleanRecord) ([]types.CategorizedRecord, int) {
	out := make([]types.CategorizedRecord, 0, len(records))
	dropped := 0

	for _, r := range records {
		mapping, ok := p.Products[r.Category]
		if !ok {
			dropped++
			continue
		}
		out = append(out, types.CategorizedRecord{
			MunicipalityCode: r.MunicipalityCode,
			Category:         mapping.Target,
			Year:             r.Year,
			Value:            r.Value.Scale(mapping.Factor),
		})
	}

	return out, dropped
}

// =============================================================================
// UNIT-BREAK CORRECTION
// =============================================================================

// ApplyUnitBreaks applies configured unit-discontinuity corrections to
// cleaned records in place. Observations of a break's product in years
// strictly before its break year are multiplied by the break's factor.
func ApplyUnitBreaks(records []types.CleanRecord, breaks []config.UnitBreak) {
	if len(breaks) == 0 {
		return
	}

	for i := range records {
		for _, b := range breaks {
			if records[i].Category == b.Product && records[i].Year < b.BeforeYear {
				records[i].Value = records[i].Value.Scale(b.Factor)
			}
		}
	}
}
