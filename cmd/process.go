// =============================================================================
// IBGE to MagPie Downscaler - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the downscaling
// pipelines. It orchestrates loading configuration, loading the reference
// bundle, and running one pipeline per survey domain.
//
// COMMAND USAGE:
//   ibge2magpie process [flags]
//
// FLAGS:
//   --domain      : Run only the pipeline for one domain (pam, ppm, pevs)
//   --dry-run     : Run the transformation without writing or archiving
//
// PROCESSING PIPELINE:
//   1. Load the main configuration and the domain configurations
//   2. Load the reference bundle (crop taxonomy, grid shares)
//   3. Run the domain pipelines concurrently
//   4. Collect results and print a summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/pipeline"
	"github.com/magpie-brazil/ibge2magpie/internal/reference"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// domainFilter restricts processing to a single survey domain.
var domainFilter string

// dryRun runs the transformation without writing output or archiving inputs.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the downscaling pipelines",
	Long: `The process command loads the configured survey domains, the crop taxonomy
and the grid-share table, and runs one downscaling pipeline per domain.

Domains share only read-only reference data and run concurrently. A failure
in one domain does not stop the others.

On success:
  - The downscaled output is placed in the output directory
  - The processed fact table is moved to the archive directory

On error:
  - The run for that domain halts with no partial output
  - The fact table remains in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(
		&domainFilter,
		"domain",
		"",
		"Run only the pipeline for one domain (pam, ppm, pevs)",
	)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Run the transformation without writing output files",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runProcess orchestrates the pipelines.
func runProcess() error {
	startTime := time.Now()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	fmt.Println("=== IBGE to MagPie Downscaler ===")
	fmt.Println("Loading configuration...")

	mainConfig, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load main config: %w", err)
	}

	domainConfigs, err := config.LoadDomainConfigs(mainConfig.ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to load domain configs: %w", err)
	}

	domains, err := selectDomains(domainConfigs, domainFilter)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d domain configuration(s)\n", len(domains))

	// =========================================================================
	// STEP 2: LOAD REFERENCE BUNDLE
	// =========================================================================

	fmt.Println("Loading reference data...")

	refs, err := reference.LoadBundle(mainConfig, anyUsesTaxonomy(domains))
	if err != nil {
		return fmt.Errorf("failed to load reference data: %w", err)
	}

	fmt.Printf("Grid shares cover %d municipalities\n", len(refs.Shares))

	// =========================================================================
	// STEP 3: RUN PIPELINES CONCURRENTLY
	// =========================================================================
	// Each domain runs in its own goroutine; domains share only the read-only
	// reference bundle. A buffered channel collects the results.

	fmt.Println("Processing domains...")

	var wg sync.WaitGroup
	results := make(chan pipeline.Result, len(domains))

	for _, domainConfig := range domains {
		wg.Add(1)

		go func(dc *config.DomainConfig) {
			defer wg.Done()
			p := pipeline.New(mainConfig, dc, refs, logger, dryRun)
			results <- p.Run()
		}(domainConfig)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS AND PRINT SUMMARY
	// =========================================================================

	var successCount, errorCount int

	for result := range results {
		if result.Success {
			successCount++
			target := result.OutputFile
			if dryRun {
				target = "(dry run)"
			}
			fmt.Printf("  ✓ %-5s %d rows -> %s\n", result.Domain, result.Stats.OutputRows, target)
			if result.Stats.DroppedByPolicy > 0 || result.Stats.DroppedMissingShare > 0 {
				fmt.Printf("          dropped: %d unmapped, %d missing share\n",
					result.Stats.DroppedByPolicy, result.Stats.DroppedMissingShare)
			}
		} else {
			errorCount++
			fmt.Printf("  ✗ %-5s %v\n", result.Domain, result.Error)
		}
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Domains:         %d\n", len(domains))
	fmt.Printf("Successful:      %d\n", successCount)
	fmt.Printf("Errors:          %d\n", errorCount)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	if errorCount > 0 {
		return fmt.Errorf("%d domain(s) failed", errorCount)
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// selectDomains applies the --domain filter and returns the domains to run in
// a stable order.
func selectDomains(configs map[string]*config.DomainConfig, filter string) ([]*config.DomainConfig, error) {
	if filter != "" {
		dc, ok := configs[filter]
		if !ok {
			return nil, fmt.Errorf("no configuration for domain %q", filter)
		}
		return []*config.DomainConfig{dc}, nil
	}

	codes := make([]string, 0, len(configs))
	for code := range configs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	domains := make([]*config.DomainConfig, 0, len(codes))
	for _, code := range codes {
		domains = append(domains, configs[code])
	}
	return domains, nil
}

// anyUsesTaxonomy reports whether any selected domain needs the crop-taxonomy
// reference.
func anyUsesTaxonomy(domains []*config.DomainConfig) bool {
	for _, dc := range domains {
		if dc.Reclassification.Policy == config.PolicyTaxonomy {
			return true
		}
	}
	return false
}
