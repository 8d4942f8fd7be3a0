package records_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/records"
)

func TestParseTimePeriodQuarter(t *testing.T) {
	got, err := records.ParseTimePeriod("2024Q3")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimePeriodMonth(t *testing.T) {
	got, err := records.ParseTimePeriod("2024M07")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseTimePeriodYear(t *testing.T) {
	got, err := records.ParseTimePeriod("2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDecodeItaRowEmptyDataValueIsNil(t *testing.T) {
	row := map[string]any{
		"AreaOrCountry": "650", "Indicator": "BalGds", "TimePeriod": "2023",
		"UNIT_MULT": float64(6), "DataValue": "",
	}

	got, err := records.DecodeItaRow(row)
	require.NoError(t, err)
	assert.Nil(t, got.DataValue)
}

func TestDecodeItaRowZeroUnitMultIsNil(t *testing.T) {
	row := map[string]any{
		"AreaOrCountry": "650", "Indicator": "BalGds", "TimePeriod": "2023",
		"UNIT_MULT": float64(0), "DataValue": "1234",
	}

	got, err := records.DecodeItaRow(row)
	require.NoError(t, err)
	assert.Nil(t, got.DataValue)
}

func TestDecodeItaRowParsesValue(t *testing.T) {
	row := map[string]any{
		"AreaOrCountry": "650", "Indicator": "BalGds", "TimePeriod": "2023",
		"UNIT_MULT": float64(6), "DataValue": "1,234",
	}

	got, err := records.DecodeItaRow(row)
	require.NoError(t, err)
	require.NotNil(t, got.DataValue)
	assert.InDelta(t, 1234.0, *got.DataValue, 0.001)
}

func TestDecodeMneRowFallsBackToTitleDictionary(t *testing.T) {
	row := map[string]any{
		"SeriesID": "4", "RowTitle": "Iron and steel mills", "ColCode": "1",
		"Year": "2022", "DataValue": float64(100),
	}

	got, err := records.DecodeMneRow(row)
	require.NoError(t, err)
	assert.Equal(t, records.Naics, got.RowCode.Kind)
	assert.Equal(t, int64(3311), got.RowCode.Code)
}

func TestDecodeMneRowUnknownTitleFails(t *testing.T) {
	row := map[string]any{
		"SeriesID": "4", "RowTitle": "Not a real title", "ColCode": "1",
		"Year": "2022", "DataValue": float64(100),
	}

	_, err := records.DecodeMneRow(row)
	require.Error(t, err)
}

func TestDecodeFixedAssetsRowParsesQuarterlyPeriod(t *testing.T) {
	row := map[string]any{
		"SeriesCode": "k1ttotl1es00", "LineNumber": "1", "LineDescription": "Private fixed assets",
		"TimePeriod": "2024Q3", "DataValue": float64(42), "CL_UNIT": "Level",
	}

	got, err := records.DecodeFixedAssetsRow(row)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), got.TimePeriod)
	assert.InDelta(t, 42.0, got.DataValue, 0.001)
}

func TestDecodeFixedAssetsRowMissingFieldFails(t *testing.T) {
	row := map[string]any{"SeriesCode": "k1ttotl1es00"}

	_, err := records.DecodeFixedAssetsRow(row)
	require.Error(t, err)
}

func TestDecodeGdpIndustryRowParsesValue(t *testing.T) {
	row := map[string]any{
		"TableID": "1", "Frequency": "A", "Year": "2022", "Quarter": "I",
		"Industry": "11", "IndustrYDescription": "Agriculture", "DataValue": "1,234",
	}

	got, err := records.DecodeGdpIndustryRow(row)
	require.NoError(t, err)
	assert.InDelta(t, 1234.0, got.DataValue, 0.001)
	assert.Equal(t, "Agriculture", got.IndustrYDescription)
}

func TestDecodeIipRowParsesValue(t *testing.T) {
	row := map[string]any{
		"TypeOfInvestment": "1", "Component": "1", "Frequency": "A", "Year": "2022",
		"TimePeriod": "2022", "CL_UNIT": "USD", "DataValue": float64(99),
	}

	got, err := records.DecodeIipRow(row)
	require.NoError(t, err)
	assert.InDelta(t, 99.0, got.DataValue, 0.001)
}

func TestDecodeIntlServTradeRowParsesValue(t *testing.T) {
	row := map[string]any{
		"Affiliation": "AFF", "AreaOrCountry": "650", "TradeDirection": "Exports",
		"TypeOfService": "S001", "Year": "2022", "TimePeriod": "2022", "DataValue": float64(7),
	}

	got, err := records.DecodeIntlServTradeRow(row)
	require.NoError(t, err)
	assert.InDelta(t, 7.0, got.DataValue, 0.001)
}

func TestDecodeIntlServStaRowParsesValue(t *testing.T) {
	row := map[string]any{
		"AreaOrCountry": "650", "Channel": "1", "Destination": "1", "Industry": "1",
		"Year": "2022", "TimePeriod": "2022", "DataValue": float64(5),
	}

	got, err := records.DecodeIntlServStaRow(row)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, got.DataValue, 0.001)
}

func TestDecodeInputOutputRowParsesValue(t *testing.T) {
	row := map[string]any{
		"TableID": "56", "Year": "2022", "RowCode": "1100", "RowDescr": "Farms",
		"ColCode": "1100", "ColDescr": "Farms", "DataValue": float64(123),
	}

	got, err := records.DecodeInputOutputRow(row)
	require.NoError(t, err)
	assert.InDelta(t, 123.0, got.DataValue, 0.001)
}
