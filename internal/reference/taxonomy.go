// =============================================================================
// IBGE to MagPie Downscaler - Crop Taxonomy Reference
// =============================================================================
//
// This module loads the crop-taxonomy reference table: rows of (source crop
// name, target category). The table is maintained by the modeling team either
// as a plain CSV or as a spreadsheet, so both formats are accepted and chosen
// by file extension.
//
// =============================================================================

package reference

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Taxonomy maps a source (IBGE) crop name to its target (MagPie) category.
// Every source name resolves to exactly one target.
type Taxonomy map[string]string

// LoadTaxonomy loads the crop-taxonomy reference from a CSV or XLSX file.
func LoadTaxonomy(path string) (Taxonomy, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadTaxonomyXLSX(path)
	default:
		return loadTaxonomyCSV(path)
	}
}

// loadTaxonomyCSV loads the taxonomy from a two-column CSV file.
func loadTaxonomyCSV(path string) (Taxonomy, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(bufio.NewReader(file))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy file: %w", err)
	}

	return buildTaxonomy(rows, path)
}

// loadTaxonomyXLSX loads the taxonomy from the first sheet of a workbook.
func loadTaxonomyXLSX(path string) (Taxonomy, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open taxonomy workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("taxonomy workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy rows: %w", err)
	}

	return buildTaxonomy(rows, path)
}

// buildTaxonomy assembles the lookup table from raw rows. A leading header
// row is recognized by name and skipped; duplicate source names are fatal
// because the mapping must be one-to-one-or-none.
func buildTaxonomy(rows [][]string, path string) (Taxonomy, error) {
	taxonomy := make(Taxonomy)

	for i, row := range rows {
		if len(row) < 2 {
			if isRowEmpty(row) {
				continue
			}
			return nil, fmt.Errorf("taxonomy %s row %d: expected 2 columns, got %d",
				path, i+1, len(row))
		}

		source := strings.TrimSpace(row[0])
		target := strings.TrimSpace(row[1])

		if source == "" && target == "" {
			continue
		}
		if i == 0 && isTaxonomyHeader(source, target) {
			continue
		}
		if source == "" || target == "" {
			return nil, fmt.Errorf("taxonomy %s row %d: empty source or target", path, i+1)
		}

		if existing, dup := taxonomy[source]; dup {
			return nil, fmt.Errorf("taxonomy %s row %d: duplicate source %q (maps to %q and %q)",
				path, i+1, source, existing, target)
		}
		taxonomy[source] = target
	}

	if len(taxonomy) == 0 {
		return nil, fmt.Errorf("taxonomy %s contains no mappings", path)
	}

	return taxonomy, nil
}

// isTaxonomyHeader reports whether a first row looks like a column header
// rather than a mapping.
func isTaxonomyHeader(source, target string) bool {
	headers := map[string]bool{
		"source": true, "target": true,
		"ibge": true, "magpie": true,
		"crop": true, "kcr": true,
		"produto": true, "categoria": true,
	}
	return headers[strings.ToLower(source)] || headers[strings.ToLower(target)]
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
