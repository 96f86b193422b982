// =============================================================================
// IBGE to MagPie Downscaler - Output Writer
// =============================================================================
//
// This module serializes the aggregated table to a semicolon-delimited text
// file with a fixed column order:
//
//   x.y.iso;t;kcr;value     (crop and forestry)
//   x.y.iso;t;value         (livestock)
//
// Literal quote characters are stripped from the spatial identifier column:
// the upstream share table sometimes carries quoted cell IDs, and the
// consumer model keys on the bare "x.y.iso" string.
//
// The full result is materialized in memory and written in one pass. An
// unwritable output path is fatal; no partial-file cleanup is performed.
//
// =============================================================================

package writer

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// Options controls the output schema.
type Options struct {
	// IncludeCategory adds the kcr column between t and value.
	IncludeCategory bool

	// Delimiter is the output field separator.
	// Default: ';'
	Delimiter rune
}

// Write serializes the rows to path.
func Write(path string, rows []types.OutputRow, opts Options) error {
	if opts.Delimiter == 0 {
		opts.Delimiter = ';'
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	buffered := bufio.NewWriter(file)
	w := csv.NewWriter(buffered)
	w.Comma = opts.Delimiter

	if err := w.Write(header(opts)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := w.Write(record(row, opts)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	return nil
}

// header returns the fixed column headers for the schema.
func header(opts Options) []string {
	if opts.IncludeCategory {
		return []string{"x.y.iso", "t", "kcr", "value"}
	}
	return []string{"x.y.iso", "t", "value"}
}

// record formats one output row.
func record(row types.OutputRow, opts Options) []string {
	cell := strings.ReplaceAll(row.CellID, `"`, "")
	year := strconv.Itoa(row.Year)
	value := strconv.FormatFloat(row.Value, 'f', -1, 64)

	if opts.IncludeCategory {
		return []string{cell, year, row.Category, value}
	}
	return []string{cell, year, value}
}
