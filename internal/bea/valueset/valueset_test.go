package valueset_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/valueset"
)

// writeParameterValues writes a GetParameterValues-shaped envelope for
// dataset/name, one ParamValue entry per field map in rows.
func writeParameterValues(t *testing.T, dir string, dataset catalog.Dataset, name catalog.ParameterName, rows []map[string]string) {
	t.Helper()

	path := filepath.Join(dir, "parameter_values", fmt.Sprintf("%s_%s_parameter_values.json", dataset, name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	body := `{"BEAAPI":{"Results":{"ParamValue":[`

	for i, row := range rows {
		if i > 0 {
			body += ","
		}

		body += "{"

		first := true
		for k, v := range row {
			if !first {
				body += ","
			}

			first = false
			body += fmt.Sprintf("%q:%q", k, v)
		}

		body += "}"
	}

	body += `]}}}`

	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

// writeByTableID writes the GDP-family per-table-id variant.
func writeByTableID(t *testing.T, dir string, dataset catalog.Dataset, name catalog.ParameterName, tableID string, keys []string) {
	t.Helper()

	path := filepath.Join(dir, "parameter_values", fmt.Sprintf("%s_%s", dataset, name),
		fmt.Sprintf("%s_%s_byTableId_%s_values.json", dataset, name, tableID))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	body := `{"BEAAPI":{"Results":{"ParamValue":[`

	for i, k := range keys {
		if i > 0 {
			body += ","
		}

		body += fmt.Sprintf(`{"Key":%q}`, k)
	}

	body += `]}}}`

	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestBuildItaAggregatesFourFields(t *testing.T) {
	dir := t.TempDir()

	writeParameterValues(t, dir, catalog.ITA, catalog.AreaOrCountry, []map[string]string{{"Key": "650"}})
	writeParameterValues(t, dir, catalog.ITA, catalog.Frequency, []map[string]string{{"Key": "A"}})
	writeParameterValues(t, dir, catalog.ITA, catalog.Indicator, []map[string]string{{"Key": "BalGds"}})
	writeParameterValues(t, dir, catalog.ITA, catalog.Year, []map[string]string{{"Key": "2023"}})

	set, err := valueset.BuildIta(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"650"}, set.AreaOrCountry)
	assert.Equal(t, []string{"A"}, set.Frequency)
}

func TestBuildItaMissingFileFails(t *testing.T) {
	_, err := valueset.BuildIta(t.TempDir())
	require.Error(t, err)
}

func TestBuildNipaYearIsKeyedByTableName(t *testing.T) {
	dir := t.TempDir()

	writeParameterValues(t, dir, catalog.NIPA, catalog.Frequency, []map[string]string{{"Key": "A"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.ShowMillions, []map[string]string{{"Key": "No"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.TableID, []map[string]string{{"Key": "1"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.TableName, []map[string]string{{"Key": "T10101"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.Year, []map[string]string{
		{"Key": "2022", "TableName": "T10101"},
		{"Key": "2023", "TableName": "T10101"},
		{"Key": "2022", "TableName": "T20100"},
	})

	set, err := valueset.BuildNipa(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2022", "2023"}, set.Year["T10101"])
	assert.ElementsMatch(t, []string{"2022"}, set.Year["T20100"])
}

func TestBuildNipaEmptyYearFails(t *testing.T) {
	dir := t.TempDir()

	writeParameterValues(t, dir, catalog.NIPA, catalog.Frequency, []map[string]string{{"Key": "A"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.ShowMillions, []map[string]string{{"Key": "No"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.TableID, []map[string]string{{"Key": "1"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.TableName, []map[string]string{{"Key": "T10101"}})
	writeParameterValues(t, dir, catalog.NIPA, catalog.Year, []map[string]string{})

	_, err := valueset.BuildNipa(dir)
	require.Error(t, err)
}

func TestBuildGdpByIndustryScopesIndustryAndYearByTableID(t *testing.T) {
	dir := t.TempDir()

	writeParameterValues(t, dir, catalog.GDPbyIndustry, catalog.Frequency, []map[string]string{{"Key": "A"}})
	writeParameterValues(t, dir, catalog.GDPbyIndustry, catalog.TableID, []map[string]string{{"Key": "1"}, {"Key": "2"}})
	writeByTableID(t, dir, catalog.GDPbyIndustry, catalog.Industry, "1", []string{"11"})
	writeByTableID(t, dir, catalog.GDPbyIndustry, catalog.Year, "1", []string{"2020"})
	writeByTableID(t, dir, catalog.GDPbyIndustry, catalog.Industry, "2", []string{"21", "22"})
	writeByTableID(t, dir, catalog.GDPbyIndustry, catalog.Year, "2", []string{"2021"})

	set, err := valueset.BuildGdpByIndustry(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"11"}, set.Industry["1"])
	assert.Equal(t, []string{"21", "22"}, set.Industry["2"])
}

func TestBuildApiMetadataEmptyFails(t *testing.T) {
	dir := t.TempDir()
	writeParameterValues(t, dir, catalog.APIDatasetMetadata, catalog.DatasetName, []map[string]string{})

	_, err := valueset.BuildApiMetadata(dir)
	require.Error(t, err)
}
