// =============================================================================
// IBGE to MagPie Downscaler - Reference Bundle
// =============================================================================

package reference

import (
	"fmt"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
)

// Bundle holds the reference tables shared by all domain pipelines. It is
// loaded once at startup and treated as read-only afterwards, so pipelines
// can run concurrently against the same bundle.
type Bundle struct {
	// Taxonomy is the crop-name mapping used by the taxonomy policy.
	Taxonomy Taxonomy

	// Shares is the municipality-to-grid-cell share table.
	Shares ShareTable
}

// LoadBundle loads the reference tables named by the main configuration.
// The taxonomy is only required when at least one domain uses the taxonomy
// policy; needTaxonomy lets callers skip it otherwise.
func LoadBundle(cfg *config.MainConfig, needTaxonomy bool) (*Bundle, error) {
	bundle := &Bundle{}

	if needTaxonomy {
		taxonomy, err := LoadTaxonomy(cfg.TaxonomyFile)
		if err != nil {
			return nil, fmt.Errorf("crop taxonomy: %w", err)
		}
		bundle.Taxonomy = taxonomy
	}

	shares, err := LoadShares(cfg.GridShare)
	if err != nil {
		return nil, fmt.Errorf("grid shares: %w", err)
	}
	bundle.Shares = shares

	return bundle, nil
}
