// =============================================================================
// IBGE to MagPie Downscaler - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks the configuration
// and the reference-data bundle without processing anything. It is meant to
// run after reference data is refreshed, before the next processing run.
//
// CHECKS:
//   - Main and domain configurations load and validate
//   - Each domain's fact table is present in the input directory
//   - The crop taxonomy loads (when a domain uses the taxonomy policy)
//   - The grid-share table loads
//   - Municipality share sums are within tolerance of 1.0 (reported only;
//     the pipeline itself never enforces this precondition)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/pipeline"
	"github.com/magpie-brazil/ibge2magpie/internal/reference"
)

// shareSumTolerance is the allowed deviation of a municipality's share sum
// from 1.0 before it is reported.
const shareSumTolerance = 0.001

// maxReportedViolations caps the share-sum listing so a broken reference file
// does not flood the terminal.
const maxReportedViolations = 20

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and reference data without processing",
	Long: `The validate command loads the main configuration, the domain
configurations and the reference bundle, and reports structural problems
without running any pipeline.

Share sums are a precondition on the reference data: the shares of one
municipality should sum to 1.0. The pipelines do not enforce this; validate
reports violations so they can be fixed upstream.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

// init registers the validate command with the root command.
func init() {
	rootCmd.AddCommand(validateCmd)
}

// runValidate performs all checks and reports the outcome.
func runValidate() error {
	fmt.Println("=== Configuration Validation ===")

	problems := 0

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("main config: %w", err)
	}
	fmt.Printf("  ✓ main config %s\n", cfgFile)

	domainConfigs, err := config.LoadDomainConfigs(mainConfig.ConfigsDir)
	if err != nil {
		return fmt.Errorf("domain configs: %w", err)
	}
	fmt.Printf("  ✓ %d domain configuration(s)\n", len(domainConfigs))

	// Reference bundle.
	needTaxonomy := false
	for _, dc := range domainConfigs {
		if dc.Reclassification.Policy == config.PolicyTaxonomy {
			needTaxonomy = true
		}
	}

	refs, err := reference.LoadBundle(mainConfig, needTaxonomy)
	if err != nil {
		return fmt.Errorf("reference data: %w", err)
	}
	if needTaxonomy {
		fmt.Printf("  ✓ crop taxonomy: %d mappings\n", len(refs.Taxonomy))
	}
	fmt.Printf("  ✓ grid shares: %d municipalities\n", len(refs.Shares))

	// Fact tables.
	for _, dc := range domainConfigs {
		p := pipeline.New(mainConfig, dc, refs, logger, true)
		if p.FactFileExists() {
			fmt.Printf("  ✓ %s fact table %s\n", dc.DomainCode, dc.FactFile)
		} else {
			fmt.Printf("  ✗ %s fact table %s not found in %s\n",
				dc.DomainCode, dc.FactFile, mainConfig.InputDir)
			problems++
		}
	}

	// Share-sum precondition.
	violations := refs.Shares.CheckShareSums(shareSumTolerance)
	if len(violations) == 0 {
		fmt.Println("  ✓ all municipality share sums within tolerance")
	} else {
		fmt.Printf("  ! %d municipality share sum(s) outside tolerance:\n", len(violations))
		for i, v := range violations {
			if i >= maxReportedViolations {
				fmt.Printf("      ... and %d more\n", len(violations)-maxReportedViolations)
				break
			}
			fmt.Printf("      municipality %d sums to %.4f\n", v.MunicipalityCode, v.Sum)
		}
	}

	if problems > 0 {
		return fmt.Errorf("validation found %d problem(s)", problems)
	}

	fmt.Println("\nValidation passed.")
	return nil
}
