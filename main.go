// =============================================================================
// IBGE to MagPie Downscaler - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ibge2magpie CLI application. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   ibge2magpie process        - Run the downscaling pipelines
//   ibge2magpie validate       - Validate configuration and reference data
//   ibge2magpie version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core pipeline logic (not for external import)
//   - pkg/           : Shared utilities
//   - configs/       : Per-domain YAML configurations (pam, ppm, pevs)
//
// =============================================================================

package main

import (
	"github.com/magpie-brazil/ibge2magpie/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
