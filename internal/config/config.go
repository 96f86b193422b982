// =============================================================================
// IBGE to MagPie Downscaler - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and domain-specific
// configurations.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global paths and reference-data locations
//   2. Domain Configs (configs/*.yaml): One per source survey (pam, ppm, pevs)
//
// ARCHITECTURE:
//   The configuration system is designed to be:
//   - Explicit: every input and output path is resolved once at startup;
//     there is no implicit working-directory or environment lookup
//   - Modular: each survey domain has its own configuration file
//   - Validated: all configurations are validated on load
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory where raw IBGE fact tables are placed.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where the downscaled output files are placed.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir is the directory where processed fact tables are moved.
	// Files are only moved here after successful processing.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ConfigsDir is the directory containing domain-specific configurations.
	// Each YAML file in this directory describes one survey pipeline.
	// Default: "./configs"
	ConfigsDir string `yaml:"configs_dir"`

	// =========================================================================
	// REFERENCE DATA
	// =========================================================================

	// TaxonomyFile is the path to the crop-taxonomy reference table mapping
	// IBGE crop names to MagPie categories. Both CSV and XLSX files are
	// accepted; the format is chosen by file extension.
	// Default: "./reference/crop_taxonomy.csv"
	TaxonomyFile string `yaml:"taxonomy_file"`

	// GridShare describes the municipality-to-grid-cell share table.
	GridShare GridShareConfig `yaml:"grid_share"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ArchiveOnSuccess determines whether processed fact tables are moved to
	// the archive directory after a successful run.
	// Default: true
	ArchiveOnSuccess bool `yaml:"archive_on_success"`
}

// GridShareConfig describes where the grid-share reference lives and which
// columns carry the join keys and the weight. The share table is produced
// upstream and may carry many auxiliary columns, so the columns of interest
// are addressed by name rather than position.
type GridShareConfig struct {
	// Path is the location of the grid-share CSV file.
	// Default: "./reference/grid_shares.csv"
	Path string `yaml:"path"`

	// MunicipalityColumn is the header of the municipality-code column.
	// Default: "mun_code"
	MunicipalityColumn string `yaml:"municipality_column"`

	// CellColumn is the header of the grid-cell identifier column.
	// Default: "idsbrazil"
	CellColumn string `yaml:"cell_column"`

	// ShareColumn is the header of the fractional-weight column.
	// Default: "adjusted_share_mun_tocr"
	ShareColumn string `yaml:"share_column"`
}

// =============================================================================
// DOMAIN CONFIGURATION STRUCTURE
// =============================================================================

// DomainConfig holds the configuration for one survey domain. Each of the
// three IBGE surveys (PAM planted area, PPM livestock, PEVS forestry) has its
// own file describing the fact table, the reclassification policy, and the
// output schema.
type DomainConfig struct {
	// DomainCode is the short survey code: "pam", "ppm" or "pevs".
	DomainCode string `yaml:"domain_code"`

	// DomainName is the human-readable survey name, used in logs and reports.
	DomainName string `yaml:"domain_name"`

	// FactFile is the fact-table file name inside the input directory.
	FactFile string `yaml:"fact_file"`

	// Delimiter is the field separator of the fact table.
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// HeaderRows is the number of header rows to skip in the fact table.
	// Default: 1
	HeaderRows int `yaml:"header_rows"`

	// OutputFile is the output file name inside the output directory.
	// Default: "<domain_code>_downscaled.csv"
	OutputFile string `yaml:"output_file"`

	// Reclassification selects and parameterizes the category policy.
	Reclassification ReclassConfig `yaml:"reclassification"`

	// UnitBreaks lists optional unit-discontinuity corrections applied to
	// cleaned records before reclassification. Empty by default: IBGE changed
	// reporting units for some fruit crops around 2001, and runs only apply a
	// correction when one is configured deliberately.
	UnitBreaks []UnitBreak `yaml:"unit_breaks,omitempty"`

	// DerivedCategories lists roll-up categories computed after aggregation.
	// Each derived category is the per-(cell, year) sum of its source
	// categories and is appended alongside the granular rows, so downstream
	// consumers must not double-count it.
	DerivedCategories []DerivedCategory `yaml:"derived_categories,omitempty"`
}

// ReclassConfig parameterizes the category reclassifier.
type ReclassConfig struct {
	// Policy selects the reclassification strategy.
	// Valid values:
	//   - "taxonomy"    : inner-join against the crop-taxonomy reference;
	//                     unmapped source categories are dropped
	//   - "herd_filter" : keep only a single herd category; the output
	//                     carries no category column
	//   - "enumerated"  : fixed product map with unit-conversion factors;
	//                     unmapped products are dropped
	Policy string `yaml:"policy"`

	// HerdKeep is the herd category retained by the "herd_filter" policy.
	// Default: "Bovino"
	HerdKeep string `yaml:"herd_keep,omitempty"`

	// Products is the product map used by the "enumerated" policy.
	Products []ProductMapping `yaml:"products,omitempty"`
}

// ProductMapping maps one source product name to a target category together
// with a unit-conversion factor applied by multiplication.
type ProductMapping struct {
	Source string  `yaml:"source"`
	Target string  `yaml:"target"`
	Factor float64 `yaml:"factor"`
}

// UnitBreak corrects a reporting-unit discontinuity: observations of Product
// in years strictly before BeforeYear are multiplied by Factor.
type UnitBreak struct {
	Product    string  `yaml:"product"`
	BeforeYear int     `yaml:"before_year"`
	Factor     float64 `yaml:"factor"`
}

// DerivedCategory defines a roll-up row set computed from aggregated output.
type DerivedCategory struct {
	// Name is the derived category name written to the output.
	Name string `yaml:"name"`

	// Sum lists the base categories added together. A base category absent
	// for a given (cell, year) contributes zero to the roll-up.
	Sum []string `yaml:"sum"`
}

// IncludeCategory reports whether the domain's output schema carries the
// category (kcr) column. Only the herd-filter policy produces a categoryless
// output.
func (c *DomainConfig) IncludeCategory() bool {
	return c.Reclassification.Policy != PolicyHerdFilter
}

// Reclassification policy names accepted in domain configs.
const (
	PolicyTaxonomy   = "taxonomy"
	PolicyHerdFilter = "herd_filter"
	PolicyEnumerated = "enumerated"
)

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file, applies
// defaults and validates it.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// YAML zero values cannot distinguish "unset" from "false" for booleans,
	// so archival defaults to on and is switched off explicitly.
	config := MainConfig{ArchiveOnSuccess: true}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.ArchiveDir == "" {
		config.ArchiveDir = "./archive"
	}
	if config.ConfigsDir == "" {
		config.ConfigsDir = "./configs"
	}
	if config.TaxonomyFile == "" {
		config.TaxonomyFile = "./reference/crop_taxonomy.csv"
	}
	if config.GridShare.Path == "" {
		config.GridShare.Path = "./reference/grid_shares.csv"
	}
	if config.GridShare.MunicipalityColumn == "" {
		config.GridShare.MunicipalityColumn = "mun_code"
	}
	if config.GridShare.CellColumn == "" {
		config.GridShare.CellColumn = "idsbrazil"
	}
	if config.GridShare.ShareColumn == "" {
		config.GridShare.ShareColumn = "adjusted_share_mun_tocr"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
}

// validateMainConfig validates the main configuration and creates the working
// directories if they do not exist.
func validateMainConfig(config *MainConfig) error {
	dirs := []string{
		config.InputDir,
		config.OutputDir,
		config.ArchiveDir,
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}

	if _, err := os.Stat(config.ConfigsDir); err != nil {
		return fmt.Errorf("configs directory %s: %w", config.ConfigsDir, err)
	}

	return nil
}

// LoadDomainConfigs loads all domain configurations from a directory.
//
// RETURNS:
//   - A map of domain configurations, keyed by domain code.
//   - An error if the directory cannot be read or any file is invalid.
func LoadDomainConfigs(configsDir string) (map[string]*DomainConfig, error) {
	configs := make(map[string]*DomainConfig)

	files, err := filepath.Glob(filepath.Join(configsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(configsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	files = append(files, ymlFiles...)

	if len(files) == 0 {
		return nil, fmt.Errorf("no domain configurations found in %s", configsDir)
	}

	for _, file := range files {
		config, err := loadDomainConfig(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		if _, dup := configs[config.DomainCode]; dup {
			return nil, fmt.Errorf("duplicate domain code %q in %s", config.DomainCode, file)
		}
		configs[config.DomainCode] = config
	}

	return configs, nil
}

// loadDomainConfig loads a single domain configuration file.
func loadDomainConfig(filePath string) (*DomainConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config DomainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	applyDomainConfigDefaults(&config)

	if err := validateDomainConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyDomainConfigDefaults sets default values for a domain configuration.
// The forestry product map and the livestock herd filter default to the
// values of the source pipelines so that a minimal config reproduces them.
func applyDomainConfigDefaults(config *DomainConfig) {
	if config.Delimiter == "" {
		config.Delimiter = ";"
	}
	if config.HeaderRows == 0 {
		config.HeaderRows = 1
	}
	if config.OutputFile == "" && config.DomainCode != "" {
		config.OutputFile = config.DomainCode + "_downscaled.csv"
	}

	if config.Reclassification.Policy == PolicyHerdFilter && config.Reclassification.HerdKeep == "" {
		config.Reclassification.HerdKeep = "Bovino"
	}

	if config.Reclassification.Policy == PolicyEnumerated && len(config.Reclassification.Products) == 0 {
		// PEVS reports firewood in cubic meters and charcoal in tonnes; the
		// factors convert both to dry-matter-equivalent mass.
		config.Reclassification.Products = []ProductMapping{
			{Source: "Lenha", Target: "woodfuel", Factor: 721},
			{Source: "Madeira em tora", Target: "wood", Factor: 350},
			{Source: "Carvão vegetal", Target: "woodfuel", Factor: 350},
		}
		if len(config.DerivedCategories) == 0 {
			config.DerivedCategories = []DerivedCategory{
				{Name: "timber", Sum: []string{"wood", "woodfuel"}},
			}
		}
	}
}

// validateDomainConfig checks the structural requirements of a domain config.
func validateDomainConfig(config *DomainConfig) error {
	if config.DomainCode == "" {
		return fmt.Errorf("domain_code is required")
	}
	if config.FactFile == "" {
		return fmt.Errorf("fact_file is required for domain %q", config.DomainCode)
	}

	switch config.Reclassification.Policy {
	case PolicyTaxonomy:
		// Mapping comes from the shared taxonomy reference.
	case PolicyHerdFilter:
		if config.Reclassification.HerdKeep == "" {
			return fmt.Errorf("herd_keep is required for the herd_filter policy")
		}
	case PolicyEnumerated:
		if len(config.Reclassification.Products) == 0 {
			return fmt.Errorf("products are required for the enumerated policy")
		}
		for _, p := range config.Reclassification.Products {
			if p.Source == "" || p.Target == "" {
				return fmt.Errorf("enumerated product mappings need source and target names")
			}
		}
	default:
		return fmt.Errorf("unknown reclassification policy %q for domain %q",
			config.Reclassification.Policy, config.DomainCode)
	}

	for _, b := range config.UnitBreaks {
		if b.Product == "" || b.BeforeYear == 0 {
			return fmt.Errorf("unit breaks need a product and a before_year")
		}
	}

	for _, d := range config.DerivedCategories {
		if d.Name == "" || len(d.Sum) == 0 {
			return fmt.Errorf("derived categories need a name and at least one source category")
		}
	}

	return nil
}
