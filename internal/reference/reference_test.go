package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/magpie-brazil/ibge2magpie/internal/config"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// =============================================================================
// TAXONOMY
// =============================================================================

func TestLoadTaxonomyCSV(t *testing.T) {
	path := writeFile(t, "taxonomy.csv",
		"source,target\n"+
			"Soja (em grão),soybean\n"+
			"Milho (em grão),maize\n")

	taxonomy, err := LoadTaxonomy(path)
	require.NoError(t, err)
	require.Len(t, taxonomy, 2)

	assert.Equal(t, "soybean", taxonomy["Soja (em grão)"])
	assert.Equal(t, "maize", taxonomy["Milho (em grão)"])
}

func TestLoadTaxonomyCSVWithoutHeader(t *testing.T) {
	path := writeFile(t, "taxonomy.csv",
		"Soja (em grão),soybean\n"+
			"Milho (em grão),maize\n")

	taxonomy, err := LoadTaxonomy(path)
	require.NoError(t, err)
	assert.Len(t, taxonomy, 2)
}

func TestLoadTaxonomyXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "source"))
	require.NoError(t, f.SetCellValue("Sheet1", "B1", "target"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", "Soja (em grão)"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", "soybean"))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	taxonomy, err := LoadTaxonomy(path)
	require.NoError(t, err)
	require.Len(t, taxonomy, 1)
	assert.Equal(t, "soybean", taxonomy["Soja (em grão)"])
}

func TestLoadTaxonomyDuplicateSourceIsFatal(t *testing.T) {
	path := writeFile(t, "taxonomy.csv",
		"Soja (em grão),soybean\n"+
			"Soja (em grão),maize\n")

	_, err := LoadTaxonomy(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source")
}

func TestLoadTaxonomyEmptyIsFatal(t *testing.T) {
	path := writeFile(t, "taxonomy.csv", "source,target\n")

	_, err := LoadTaxonomy(path)
	require.Error(t, err)
}

// =============================================================================
// GRID SHARES
// =============================================================================

func shareConfig(path string) config.GridShareConfig {
	return config.GridShareConfig{
		Path:               path,
		MunicipalityColumn: "mun_code",
		CellColumn:         "idsbrazil",
		ShareColumn:        "adjusted_share_mun_tocr",
	}
}

func TestLoadShares(t *testing.T) {
	path := writeFile(t, "shares.csv",
		"mun_code,idsbrazil,area_km2,adjusted_share_mun_tocr\n"+
			"1100015,-61p5.-11p5.BRA,120.5,0.6\n"+
			"1100015,-61p0.-11p5.BRA,80.3,0.4\n"+
			"3550308,-46p5.-23p5.BRA,900.0,1.0\n")

	table, err := LoadShares(shareConfig(path))
	require.NoError(t, err)
	require.Len(t, table, 2)

	shares := table[1100015]
	require.Len(t, shares, 2)
	assert.Equal(t, Share{CellID: "-61p5.-11p5.BRA", Weight: 0.6}, shares[0])
	assert.Equal(t, Share{CellID: "-61p0.-11p5.BRA", Weight: 0.4}, shares[1])
}

func TestLoadSharesMissingColumnIsFatal(t *testing.T) {
	path := writeFile(t, "shares.csv",
		"mun_code,idsbrazil\n"+
			"1100015,-61p5.-11p5.BRA\n")

	_, err := LoadShares(shareConfig(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adjusted_share_mun_tocr")
}

func TestLoadSharesBadWeightIsFatal(t *testing.T) {
	path := writeFile(t, "shares.csv",
		"mun_code,idsbrazil,adjusted_share_mun_tocr\n"+
			"1100015,-61p5.-11p5.BRA,not-a-number\n")

	_, err := LoadShares(shareConfig(path))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid share")
}

func TestCheckShareSums(t *testing.T) {
	table := ShareTable{
		1: {{CellID: "A", Weight: 0.6}, {CellID: "B", Weight: 0.4}},
		2: {{CellID: "A", Weight: 0.6}, {CellID: "B", Weight: 0.3}},
		3: {{CellID: "A", Weight: 1.0005}},
	}

	violations := table.CheckShareSums(0.001)
	require.Len(t, violations, 1)
	assert.Equal(t, 2, violations[0].MunicipalityCode)
	assert.InDelta(t, 0.9, violations[0].Sum, 1e-9)
}
