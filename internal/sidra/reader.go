// =============================================================================
// IBGE to MagPie Downscaler - SIDRA Fact-Table Reader
// =============================================================================
//
// This module reads raw fact tables exported from IBGE's SIDRA system. The
// exports share a fixed fourteen-column positional layout regardless of the
// survey (PAM, PPM, PEVS), so rows are addressed by position rather than by
// header name:
//
//   0  territorial level code     7  variable code
//   1  territorial level name     8  variable name
//   2  unit code                  9  year code
//   3  unit name                 10  year name
//   4  raw value                 11  product/herd code
//   5  municipality code         12  product/herd name
//   6  municipality name         13  year
//
// The reader only splits and positions fields; semantic renaming, sentinel
// substitution and type coercion belong to the cleaner.
//
// =============================================================================

package sidra

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Positional field indexes of a SIDRA export row.
const (
	FieldLevelCode = iota
	FieldLevelName
	FieldUnitCode
	FieldUnitName
	FieldValue
	FieldMunicipalityCode
	FieldMunicipalityName
	FieldVariableCode
	FieldVariableName
	FieldYearCode
	FieldYearName
	FieldProductCode
	FieldProductName
	FieldYear

	// FieldCount is the expected number of fields per row.
	FieldCount = 14
)

// Settings contains settings for reading a fact table.
type Settings struct {
	// Delimiter is the character used to separate fields.
	// Common values: ";" (SIDRA default), "," or "\t".
	Delimiter string

	// HeaderRows is the number of leading header rows to skip.
	// Default: 1
	HeaderRows int
}

// Row is one raw fact-table row together with its 1-indexed line number,
// kept for error reporting.
type Row struct {
	Fields []string
	Line   int
}

// Read reads a fact table and returns its data rows.
//
// Rows with fewer than FieldCount fields are fatal: a narrower row means the
// upstream export format changed, and halting beats silently mispositioning
// fields. Entirely empty rows are skipped.
func Read(path string, settings Settings) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fact table: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	configureReader(reader, settings)

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read fact table: %w", err)
	}

	if len(allRows) == 0 {
		return nil, fmt.Errorf("fact table %s is empty", path)
	}

	headerRows := settings.HeaderRows
	if headerRows < 0 {
		headerRows = 0
	}
	if headerRows > len(allRows) {
		return nil, fmt.Errorf("fact table %s has fewer rows than header_rows", path)
	}

	rows := make([]Row, 0, len(allRows)-headerRows)
	for i := headerRows; i < len(allRows); i++ {
		line := i + 1

		if isRowEmpty(allRows[i]) {
			continue
		}

		if len(allRows[i]) < FieldCount {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d",
				line, FieldCount, len(allRows[i]))
		}

		rows = append(rows, Row{Fields: allRows[i], Line: line})
	}

	return rows, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings Settings) {
	switch settings.Delimiter {
	case "\\t", "tab", "TAB":
		reader.Comma = '\t'
	case ",", "comma":
		reader.Comma = ','
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ';' // SIDRA default
		}
	}

	// SIDRA exports occasionally carry stray quotes and trailing columns;
	// tolerate both and let the cleaner surface real problems.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
