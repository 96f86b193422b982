// =============================================================================
// IBGE to MagPie Downscaler - Pipeline Orchestrator
// =============================================================================
//
// This module contains the generic per-domain pipeline. The same skeleton
// serves all three surveys, parameterized by the domain configuration:
//
//   1. Read the raw fact table (internal/sidra)
//   2. Clean records: sentinel substitution, type coercion (internal/cleaner)
//   3. Apply optional unit-break corrections (internal/reclass)
//   4. Reclassify into the target taxonomy (internal/reclass)
//   5. Redistribute onto grid cells (internal/redistribute)
//   6. Aggregate by output key, append derived roll-ups (internal/aggregate)
//   7. Write the semicolon-delimited output (internal/writer)
//   8. Archive the processed fact table
//
// CONCURRENCY:
//   A pipeline holds no shared mutable state; the reference bundle is
//   read-only. Domain pipelines can therefore run concurrently.
//
// =============================================================================

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/magpie-brazil/ibge2magpie/internal/aggregate"
	"github.com/magpie-brazil/ibge2magpie/internal/cleaner"
	"github.com/magpie-brazil/ibge2magpie/internal/config"
	"github.com/magpie-brazil/ibge2magpie/internal/reclass"
	"github.com/magpie-brazil/ibge2magpie/internal/redistribute"
	"github.com/magpie-brazil/ibge2magpie/internal/reference"
	"github.com/magpie-brazil/ibge2magpie/internal/sidra"
	"github.com/magpie-brazil/ibge2magpie/internal/writer"
	"github.com/magpie-brazil/ibge2magpie/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one domain run.
type Result struct {
	// Domain is the survey code of the pipeline that produced this result.
	Domain string

	// FactFile is the path of the processed fact table.
	FactFile string

	// OutputFile is the path of the written output.
	// This is empty if processing failed or the run was a dry run.
	OutputFile string

	// Success indicates whether the run completed.
	Success bool

	// Error contains the failure when Success is false.
	Error error

	// Stats contains processing statistics.
	Stats Stats
}

// Stats contains statistics about one domain run.
type Stats struct {
	// RunID identifies the run in logs.
	RunID string

	// RowsRead is the number of raw fact rows read.
	RowsRead int

	// DroppedByPolicy is the number of records excluded by the
	// reclassification policy (unmapped crops, filtered herds, products
	// outside the enumerated map).
	DroppedByPolicy int

	// DroppedMissingShare is the number of records excluded because their
	// municipality is absent from the grid-share table.
	DroppedMissingShare int

	// OutputRows is the number of aggregated rows written.
	OutputRows int

	// Duration is the time taken by the run.
	Duration time.Duration
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline processes one survey domain.
type Pipeline struct {
	mainConfig   *config.MainConfig
	domainConfig *config.DomainConfig
	refs         *reference.Bundle
	logger       *zap.Logger
	dryRun       bool
}

// New creates a Pipeline for one domain. The reference bundle must already be
// loaded; it is shared read-only across pipelines.
func New(mainConfig *config.MainConfig, domainConfig *config.DomainConfig, refs *reference.Bundle, logger *zap.Logger, dryRun bool) *Pipeline {
	return &Pipeline{
		mainConfig:   mainConfig,
		domainConfig: domainConfig,
		refs:         refs,
		logger:       logger.With(zap.String("domain", domainConfig.DomainCode)),
		dryRun:       dryRun,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline for the domain's fact table. Any malformed input
// aborts the run; there is no partial-output mode.
func (p *Pipeline) Run() Result {
	startTime := time.Now()
	result := Result{
		Domain:   p.domainConfig.DomainCode,
		FactFile: filepath.Join(p.mainConfig.InputDir, p.domainConfig.FactFile),
	}
	result.Stats.RunID = uuid.NewString()

	log := p.logger.With(zap.String("run_id", result.Stats.RunID))
	log.Info("starting pipeline",
		zap.String("fact_file", result.FactFile),
		zap.Bool("dry_run", p.dryRun))

	// =========================================================================
	// STEP 1: READ FACT TABLE
	// =========================================================================

	rows, err := sidra.Read(result.FactFile, sidra.Settings{
		Delimiter:  p.domainConfig.Delimiter,
		HeaderRows: p.domainConfig.HeaderRows,
	})
	if err != nil {
		result.Error = fmt.Errorf("failed to read fact table: %w", err)
		return result
	}
	result.Stats.RowsRead = len(rows)
	log.Debug("read fact table", zap.Int("rows", len(rows)))

	// =========================================================================
	// STEP 2: CLEAN RECORDS
	// =========================================================================

	records, err := cleaner.Clean(rows)
	if err != nil {
		result.Error = fmt.Errorf("failed to clean records: %w", err)
		return result
	}

	// =========================================================================
	// STEP 3: UNIT-BREAK CORRECTIONS
	// =========================================================================

	reclass.ApplyUnitBreaks(records, p.domainConfig.UnitBreaks)

	// =========================================================================
	// STEP 4: RECLASSIFY
	// =========================================================================

	policy, err := p.policy()
	if err != nil {
		result.Error = err
		return result
	}

	categorized, dropped := policy.Apply(records)
	result.Stats.DroppedByPolicy = dropped
	if dropped > 0 {
		log.Warn("records dropped by reclassification policy",
			zap.String("policy", p.domainConfig.Reclassification.Policy),
			zap.Int("dropped", dropped))
	}

	// =========================================================================
	// STEP 5: REDISTRIBUTE ONTO THE GRID
	// =========================================================================

	redistributed, missing := redistribute.Redistribute(categorized, p.refs.Shares)
	result.Stats.DroppedMissingShare = missing
	if missing > 0 {
		log.Warn("records dropped for municipalities missing from the share table",
			zap.Int("dropped", missing))
	}

	// =========================================================================
	// STEP 6: AGGREGATE
	// =========================================================================

	aggregated := aggregate.Sum(redistributed)
	aggregated = aggregate.AppendDerived(aggregated, p.domainConfig.DerivedCategories)
	result.Stats.OutputRows = len(aggregated)
	log.Debug("aggregated output", zap.Int("rows", len(aggregated)))

	// =========================================================================
	// STEP 7: WRITE OUTPUT
	// =========================================================================

	if p.dryRun {
		log.Info("dry run: skipping output write and archival")
		result.Success = true
		result.Stats.Duration = time.Since(startTime)
		return result
	}

	outputPath := filepath.Join(p.mainConfig.OutputDir, p.domainConfig.OutputFile)
	if err := writer.Write(outputPath, aggregated, writer.Options{
		IncludeCategory: p.domainConfig.IncludeCategory(),
	}); err != nil {
		result.Error = fmt.Errorf("failed to write output: %w", err)
		return result
	}
	result.OutputFile = outputPath

	// =========================================================================
	// STEP 8: ARCHIVE PROCESSED FACT TABLE
	// =========================================================================

	if p.mainConfig.ArchiveOnSuccess {
		fm := utils.NewFileManager(p.mainConfig.InputDir, p.mainConfig.OutputDir, p.mainConfig.ArchiveDir)
		archived, err := fm.ArchiveInput(result.FactFile)
		if err != nil {
			result.Error = fmt.Errorf("output written but archival failed: %w", err)
			return result
		}
		log.Debug("archived fact table", zap.String("archived", archived))
	}

	result.Success = true
	result.Stats.Duration = time.Since(startTime)
	log.Info("pipeline complete",
		zap.Int("rows_read", result.Stats.RowsRead),
		zap.Int("output_rows", result.Stats.OutputRows),
		zap.Duration("duration", result.Stats.Duration))

	return result
}

// policy builds the reclassification policy from the domain configuration.
func (p *Pipeline) policy() (reclass.Policy, error) {
	cfg := p.domainConfig.Reclassification

	switch cfg.Policy {
	case config.PolicyTaxonomy:
		if len(p.refs.Taxonomy) == 0 {
			return nil, fmt.Errorf("taxonomy policy requires the crop-taxonomy reference")
		}
		return reclass.TaxonomyJoin{Mapping: p.refs.Taxonomy}, nil
	case config.PolicyHerdFilter:
		return reclass.HerdFilter{Keep: cfg.HerdKeep}, nil
	case config.PolicyEnumerated:
		return reclass.NewEnumeratedMap(cfg.Products), nil
	default:
		return nil, fmt.Errorf("unknown reclassification policy %q", cfg.Policy)
	}
}

// FactFileExists reports whether the domain's fact table is present in the
// input directory. Used by the validate command.
func (p *Pipeline) FactFileExists() bool {
	_, err := os.Stat(filepath.Join(p.mainConfig.InputDir, p.domainConfig.FactFile))
	return err == nil
}
