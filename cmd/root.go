// =============================================================================
// IBGE to MagPie Downscaler - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands (process, validate, version) are
// attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (ibge2magpie)
//   ├── processCmd (ibge2magpie process)
//   ├── validateCmd (ibge2magpie validate)
//   └── versionCmd (ibge2magpie version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Initializing the logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// logger is the shared structured logger, initialized before any subcommand
// runs.
var logger *zap.Logger

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ibge2magpie",
	Short: "IBGE to MagPie downscaler - redistribute municipal agricultural statistics onto a spatial grid",
	Long: `ibge2magpie transforms municipality-level agricultural statistics published
by IBGE (PAM planted area, PPM livestock herds, PEVS forestry production) into
grid-cell level, MagPie-categorized datasets.

Each survey domain runs the same pipeline: clean raw records, reclassify
categories into the MagPie taxonomy, redistribute municipal values onto grid
cells using precomputed area shares, aggregate per (cell, year, category),
and write a semicolon-delimited output file.

Example Usage:
  ibge2magpie process                    # Run all configured domain pipelines
  ibge2magpie process --domain pevs      # Run only the forestry pipeline
  ibge2magpie validate                   # Check configs and reference data`,

	// PersistentPreRunE initializes the logger for every subcommand.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},

	// Without a subcommand, print the help message.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initLogger builds the shared zap logger. --verbose selects a development
// console logger at debug level; otherwise production JSON at info level.
func initLogger() error {
	var err error

	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		logger, err = cfg.Build()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}
