// Package records decodes envelope.Data rows into dataset-specific typed
// records, per spec.md §4.10: TimePeriod parsing for the NIPA family,
// ITA's empty/zero-unit DataValue handling, MNE's RowCode fallback, and a
// dedicated row schema for each of the remaining data-bearing datasets.
package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/correlator-io/beaharvest/internal/bea/coerce"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// ParseTimePeriod parses NIPA/NIUnderlyingDetail's TimePeriod strings:
// "2024Q3" to the first day of that quarter, "2024M07" to the first day
// of that month, "2024" to Jan 1.
func ParseTimePeriod(s string) (time.Time, error) {
	switch {
	case strings.Contains(s, "Q"):
		parts := strings.SplitN(s, "Q", 2)

		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, errs.Wrap(errs.UnknownValue, "parsing TimePeriod year: "+s, err)
		}

		quarter, err := strconv.Atoi(parts[1])
		if err != nil {
			return time.Time{}, errs.Wrap(errs.UnknownValue, "parsing TimePeriod quarter: "+s, err)
		}

		month := time.Month((quarter-1)*3 + 1)

		return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC), nil

	case strings.Contains(s, "M"):
		parts := strings.SplitN(s, "M", 2)

		year, err := strconv.Atoi(parts[0])
		if err != nil {
			return time.Time{}, errs.Wrap(errs.UnknownValue, "parsing TimePeriod year: "+s, err)
		}

		month, err := strconv.Atoi(parts[1])
		if err != nil {
			return time.Time{}, errs.Wrap(errs.UnknownValue, "parsing TimePeriod month: "+s, err)
		}

		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil

	default:
		year, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, errs.Wrap(errs.UnknownValue, "parsing TimePeriod: "+s, err)
		}

		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
}

// NipaRow is one decoded NIPA or NIUnderlyingDetail data row.
type NipaRow struct {
	SeriesCode string
	LineNumber string
	LineDescription string
	TimePeriod time.Time
	DataValue  float64
	CLUnit     string
}

// DecodeNipaRow converts one raw Data row into a NipaRow.
func DecodeNipaRow(row map[string]any) (NipaRow, error) {
	seriesCode, err := coerce.MapToString(row, "SeriesCode")
	if err != nil {
		return NipaRow{}, err
	}

	lineNumber, err := coerce.MapToString(row, "LineNumber")
	if err != nil {
		return NipaRow{}, err
	}

	lineDescription, err := coerce.MapToString(row, "LineDescription")
	if err != nil {
		return NipaRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return NipaRow{}, err
	}

	timePeriod, err := ParseTimePeriod(period)
	if err != nil {
		return NipaRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return NipaRow{}, err
	}

	unit, err := coerce.MapToString(row, "CL_UNIT")
	if err != nil {
		return NipaRow{}, err
	}

	return NipaRow{
		SeriesCode: seriesCode, LineNumber: lineNumber, LineDescription: lineDescription,
		TimePeriod: timePeriod, DataValue: value, CLUnit: unit,
	}, nil
}

// ItaRow is one decoded ITA data row. DataValue is nil when the response
// carried an empty string or UNIT_MULT == 0 (spec.md §4.10).
type ItaRow struct {
	AreaOrCountry string
	Indicator     string
	TimePeriod    string
	DataValue     *float64
}

// DecodeItaRow converts one raw Data row into an ItaRow.
func DecodeItaRow(row map[string]any) (ItaRow, error) {
	area, err := coerce.MapToString(row, "AreaOrCountry")
	if err != nil {
		return ItaRow{}, err
	}

	indicator, err := coerce.MapToString(row, "Indicator")
	if err != nil {
		return ItaRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return ItaRow{}, err
	}

	unitMult, err := coerce.MapToFloat(row, "UNIT_MULT")
	if err != nil {
		return ItaRow{}, err
	}

	raw, ok := row["DataValue"]
	if !ok {
		return ItaRow{}, errs.New(errs.KeyMissing, "key missing: DataValue")
	}

	var value *float64

	isEmptyString := false
	if s, isStr := raw.(string); isStr && s == "" {
		isEmptyString = true
	}

	if unitMult != 0 && !isEmptyString {
		v, err := coerce.JSONFloat(raw)
		if err != nil {
			return ItaRow{}, err
		}

		value = &v
	}

	return ItaRow{AreaOrCountry: area, Indicator: indicator, TimePeriod: period, DataValue: value}, nil
}

// MneRow is one decoded MNE data row, with its industry classification
// resolved per ResolveRowCode.
type MneRow struct {
	SeriesID string
	RowCode  RowCode
	RowTitle string
	ColCode  string
	Year     string
	DataValue float64
}

// DecodeMneRow converts one raw Data row into an MneRow, falling back to
// the title dictionary when RowCode is absent.
func DecodeMneRow(row map[string]any) (MneRow, error) {
	seriesID, err := coerce.MapToString(row, "SeriesID")
	if err != nil {
		return MneRow{}, err
	}

	rowTitle, err := coerce.MapToString(row, "RowTitle")
	if err != nil {
		return MneRow{}, err
	}

	colCode, err := coerce.MapToString(row, "ColCode")
	if err != nil {
		return MneRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return MneRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return MneRow{}, err
	}

	code, hasCode := int64(0), false

	if v, err := coerce.MapToInt(row, "RowCode"); err == nil {
		code, hasCode = v, true
	}

	rowCode, err := ResolveRowCode(code, hasCode, rowTitle)
	if err != nil {
		return MneRow{}, err
	}

	return MneRow{
		SeriesID: seriesID, RowCode: rowCode, RowTitle: rowTitle,
		ColCode: colCode, Year: year, DataValue: value,
	}, nil
}

// FixedAssetsRow is one decoded FixedAssets data row. BEA publishes
// FixedAssets under the same NIPA-style row shape as NipaRow.
type FixedAssetsRow struct {
	SeriesCode      string
	LineNumber      string
	LineDescription string
	TimePeriod      time.Time
	DataValue       float64
	CLUnit          string
}

// DecodeFixedAssetsRow converts one raw Data row into a FixedAssetsRow.
func DecodeFixedAssetsRow(row map[string]any) (FixedAssetsRow, error) {
	seriesCode, err := coerce.MapToString(row, "SeriesCode")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	lineNumber, err := coerce.MapToString(row, "LineNumber")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	lineDescription, err := coerce.MapToString(row, "LineDescription")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	timePeriod, err := ParseTimePeriod(period)
	if err != nil {
		return FixedAssetsRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	unit, err := coerce.MapToString(row, "CL_UNIT")
	if err != nil {
		return FixedAssetsRow{}, err
	}

	return FixedAssetsRow{
		SeriesCode: seriesCode, LineNumber: lineNumber, LineDescription: lineDescription,
		TimePeriod: timePeriod, DataValue: value, CLUnit: unit,
	}, nil
}

// GdpIndustryRow is one decoded GDPbyIndustry or UnderlyingGDPbyIndustry
// data row. Both datasets share this shape (spec.md §4.4's TableID-keyed
// Industry/Year special case governs request construction, not the row
// schema returned here).
type GdpIndustryRow struct {
	TableID   string
	Frequency string
	Year      string
	Quarter   string
	Industry  string
	IndustrYDescription string
	DataValue float64
}

// DecodeGdpIndustryRow converts one raw Data row into a GdpIndustryRow.
func DecodeGdpIndustryRow(row map[string]any) (GdpIndustryRow, error) {
	tableID, err := coerce.MapToString(row, "TableID")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	frequency, err := coerce.MapToString(row, "Frequency")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	quarter, err := coerce.MapToString(row, "Quarter")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	industry, err := coerce.MapToString(row, "Industry")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	description, err := coerce.MapToString(row, "IndustrYDescription")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return GdpIndustryRow{}, err
	}

	return GdpIndustryRow{
		TableID: tableID, Frequency: frequency, Year: year, Quarter: quarter,
		Industry: industry, IndustrYDescription: description, DataValue: value,
	}, nil
}

// IipRow is one decoded IIP data row.
type IipRow struct {
	TypeOfInvestment string
	Component        string
	Frequency        string
	Year             string
	TimePeriod       string
	CLUnit           string
	DataValue        float64
}

// DecodeIipRow converts one raw Data row into an IipRow.
func DecodeIipRow(row map[string]any) (IipRow, error) {
	typeOfInvestment, err := coerce.MapToString(row, "TypeOfInvestment")
	if err != nil {
		return IipRow{}, err
	}

	component, err := coerce.MapToString(row, "Component")
	if err != nil {
		return IipRow{}, err
	}

	frequency, err := coerce.MapToString(row, "Frequency")
	if err != nil {
		return IipRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return IipRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return IipRow{}, err
	}

	unit, err := coerce.MapToString(row, "CL_UNIT")
	if err != nil {
		return IipRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return IipRow{}, err
	}

	return IipRow{
		TypeOfInvestment: typeOfInvestment, Component: component, Frequency: frequency,
		Year: year, TimePeriod: period, CLUnit: unit, DataValue: value,
	}, nil
}

// IntlServTradeRow is one decoded IntlServTrade data row.
type IntlServTradeRow struct {
	Affiliation    string
	AreaOrCountry  string
	TradeDirection string
	TypeOfService  string
	Year           string
	TimePeriod     string
	DataValue      float64
}

// DecodeIntlServTradeRow converts one raw Data row into an IntlServTradeRow.
func DecodeIntlServTradeRow(row map[string]any) (IntlServTradeRow, error) {
	affiliation, err := coerce.MapToString(row, "Affiliation")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	area, err := coerce.MapToString(row, "AreaOrCountry")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	direction, err := coerce.MapToString(row, "TradeDirection")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	typeOfService, err := coerce.MapToString(row, "TypeOfService")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return IntlServTradeRow{}, err
	}

	return IntlServTradeRow{
		Affiliation: affiliation, AreaOrCountry: area, TradeDirection: direction,
		TypeOfService: typeOfService, Year: year, TimePeriod: period, DataValue: value,
	}, nil
}

// IntlServStaRow is one decoded IntlServSTA data row.
type IntlServStaRow struct {
	AreaOrCountry string
	Channel       string
	Destination   string
	Industry      string
	Year          string
	TimePeriod    string
	DataValue     float64
}

// DecodeIntlServStaRow converts one raw Data row into an IntlServStaRow.
func DecodeIntlServStaRow(row map[string]any) (IntlServStaRow, error) {
	area, err := coerce.MapToString(row, "AreaOrCountry")
	if err != nil {
		return IntlServStaRow{}, err
	}

	channel, err := coerce.MapToString(row, "Channel")
	if err != nil {
		return IntlServStaRow{}, err
	}

	destination, err := coerce.MapToString(row, "Destination")
	if err != nil {
		return IntlServStaRow{}, err
	}

	industry, err := coerce.MapToString(row, "Industry")
	if err != nil {
		return IntlServStaRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return IntlServStaRow{}, err
	}

	period, err := coerce.MapToString(row, "TimePeriod")
	if err != nil {
		return IntlServStaRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return IntlServStaRow{}, err
	}

	return IntlServStaRow{
		AreaOrCountry: area, Channel: channel, Destination: destination,
		Industry: industry, Year: year, TimePeriod: period, DataValue: value,
	}, nil
}

// InputOutputRow is one decoded InputOutput data row. Rows are keyed by a
// (RowCode, ColCode) matrix cell within one TableID/Year.
type InputOutputRow struct {
	TableID   string
	Year      string
	RowCode   string
	RowDescr  string
	ColCode   string
	ColDescr  string
	DataValue float64
}

// DecodeInputOutputRow converts one raw Data row into an InputOutputRow.
func DecodeInputOutputRow(row map[string]any) (InputOutputRow, error) {
	tableID, err := coerce.MapToString(row, "TableID")
	if err != nil {
		return InputOutputRow{}, err
	}

	year, err := coerce.MapToString(row, "Year")
	if err != nil {
		return InputOutputRow{}, err
	}

	rowCode, err := coerce.MapToString(row, "RowCode")
	if err != nil {
		return InputOutputRow{}, err
	}

	rowDescr, err := coerce.MapToString(row, "RowDescr")
	if err != nil {
		return InputOutputRow{}, err
	}

	colCode, err := coerce.MapToString(row, "ColCode")
	if err != nil {
		return InputOutputRow{}, err
	}

	colDescr, err := coerce.MapToString(row, "ColDescr")
	if err != nil {
		return InputOutputRow{}, err
	}

	value, err := coerce.MapToFloat(row, "DataValue")
	if err != nil {
		return InputOutputRow{}, err
	}

	return InputOutputRow{
		TableID: tableID, Year: year, RowCode: rowCode, RowDescr: rowDescr,
		ColCode: colCode, ColDescr: colDescr, DataValue: value,
	}, nil
}
