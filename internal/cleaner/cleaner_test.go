package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magpie-brazil/ibge2magpie/internal/sidra"
	"github.com/magpie-brazil/ibge2magpie/internal/types"
)

// factRow builds a raw fourteen-field fact row for tests.
func factRow(value, munCode, product, year string) sidra.Row {
	fields := make([]string, sidra.FieldCount)
	fields[sidra.FieldLevelCode] = "6"
	fields[sidra.FieldLevelName] = "Município"
	fields[sidra.FieldUnitName] = "Hectares"
	fields[sidra.FieldValue] = value
	fields[sidra.FieldMunicipalityCode] = munCode
	fields[sidra.FieldMunicipalityName] = "Testópolis"
	fields[sidra.FieldProductName] = product
	fields[sidra.FieldYearCode] = year
	fields[sidra.FieldYearName] = year
	fields[sidra.FieldYear] = year
	return sidra.Row{Fields: fields, Line: 2}
}

func TestCleanSentinelsZeroFill(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"not available", "-"},
		{"not applicable", "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Clean([]sidra.Row{factRow(tt.value, "1100015", "Soja (em grão)", "2010")})
			require.NoError(t, err)
			require.Len(t, records, 1)

			assert.Equal(t, types.Some(0), records[0].Value)
		})
	}
}

func TestCleanCoercesFields(t *testing.T) {
	records, err := Clean([]sidra.Row{factRow("1250.5", "3550308", "Milho (em grão)", "2015")})
	require.NoError(t, err)
	require.Len(t, records, 1)

	r := records[0]
	assert.Equal(t, 3550308, r.MunicipalityCode)
	assert.Equal(t, "Milho (em grão)", r.Category)
	assert.Equal(t, 2015, r.Year)
	assert.Equal(t, types.Some(1250.5), r.Value)
}

func TestCleanBadValueIsFatal(t *testing.T) {
	_, err := Clean([]sidra.Row{factRow("X", "1100015", "Soja (em grão)", "2010")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot coerce value")
}

func TestCleanBadMunicipalityCodeIsFatal(t *testing.T) {
	_, err := Clean([]sidra.Row{factRow("100", "abc", "Soja (em grão)", "2010")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid municipality code")
}

func TestCleanBadYearIsFatal(t *testing.T) {
	row := factRow("100", "1100015", "Soja (em grão)", "2010")
	row.Fields[sidra.FieldYear] = "two thousand"

	_, err := Clean([]sidra.Row{row})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid year")
}
