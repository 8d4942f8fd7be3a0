package valueset

import (
	"fmt"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/envelope"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// requireNonEmpty enforces the invariant that a successfully built
// ValueSet never carries an empty enumerated field.
func requireNonEmpty(label string, values []string) error {
	if len(values) == 0 {
		return errs.New(errs.Empty, "value field is empty: "+label)
	}

	return nil
}

// yearsByTable groups a flat Year parameter-values response by the
// TableName field each entry carries — the file a NIPA-family dataset
// loads for Year is flat on disk, but each row scopes its legal years to
// one table, which is how the iterator later resolves a (TableName,
// Frequency) pair to a year list (spec.md §4.5).
func yearsByTable(tables []envelope.ParameterValueTable) map[string][]string {
	out := make(map[string][]string)

	for _, t := range tables {
		tableName, _ := t.Fields["TableName"].(string)
		year, _ := t.Fields["Key"].(string)

		if tableName == "" || year == "" {
			continue
		}

		out[tableName] = append(out[tableName], year)
	}

	return out
}

// Nipa enumerates legal NIPA parameter values. TableID and TableName are
// tracked separately: destination paths and the plan iterator key off
// TableName, while TableID is loaded and checked non-empty but not read by
// any iterator. Year is keyed by TableName — BEA's own Year
// parameter-values response scopes each row to a table.
type Nipa struct {
	Frequency    []string
	ShowMillions []string
	TableID      []string
	TableName    []string
	Year         map[string][]string
}

func (Nipa) Dataset() catalog.Dataset { return catalog.NIPA }

// BuildNipa reads parameter_values/{NIPA}_*.json and aggregates them.
func BuildNipa(dir string) (*Nipa, error) {
	freq, err := loadParameterValues(dir, catalog.NIPA, catalog.Frequency)
	if err != nil {
		return nil, err
	}

	millions, err := loadParameterValues(dir, catalog.NIPA, catalog.ShowMillions)
	if err != nil {
		return nil, err
	}

	tableID, err := loadParameterValues(dir, catalog.NIPA, catalog.TableID)
	if err != nil {
		return nil, err
	}

	tableName, err := loadParameterValues(dir, catalog.NIPA, catalog.TableName)
	if err != nil {
		return nil, err
	}

	year, err := loadParameterValues(dir, catalog.NIPA, catalog.Year)
	if err != nil {
		return nil, err
	}

	set := &Nipa{
		Frequency:    fieldKeys(freq, "Key"),
		ShowMillions: fieldKeys(millions, "Key"),
		TableID:      fieldKeys(tableID, "Key"),
		TableName:    fieldKeys(tableName, "Key"),
		Year:         yearsByTable(year),
	}

	for label, values := range map[string][]string{
		"Frequency": set.Frequency, "ShowMillions": set.ShowMillions,
		"TableID": set.TableID, "TableName": set.TableName,
	} {
		if err := requireNonEmpty(label, values); err != nil {
			return nil, err
		}
	}

	if len(set.Year) == 0 {
		return nil, errs.New(errs.Empty, "value field is empty: Year")
	}

	return set, nil
}

// NiUnderlyingDetail mirrors Nipa minus ShowMillions.
type NiUnderlyingDetail struct {
	Frequency []string
	TableID   []string
	TableName []string
	Year      map[string][]string
}

func (NiUnderlyingDetail) Dataset() catalog.Dataset { return catalog.NIUnderlyingDetail }

func BuildNiUnderlyingDetail(dir string) (*NiUnderlyingDetail, error) {
	freq, err := loadParameterValues(dir, catalog.NIUnderlyingDetail, catalog.Frequency)
	if err != nil {
		return nil, err
	}

	tableID, err := loadParameterValues(dir, catalog.NIUnderlyingDetail, catalog.TableID)
	if err != nil {
		return nil, err
	}

	tableName, err := loadParameterValues(dir, catalog.NIUnderlyingDetail, catalog.TableName)
	if err != nil {
		return nil, err
	}

	year, err := loadParameterValues(dir, catalog.NIUnderlyingDetail, catalog.Year)
	if err != nil {
		return nil, err
	}

	set := &NiUnderlyingDetail{
		Frequency: fieldKeys(freq, "Key"),
		TableID:   fieldKeys(tableID, "Key"),
		TableName: fieldKeys(tableName, "Key"),
		Year:      yearsByTable(year),
	}

	for label, values := range map[string][]string{
		"Frequency": set.Frequency, "TableID": set.TableID, "TableName": set.TableName,
	} {
		if err := requireNonEmpty(label, values); err != nil {
			return nil, err
		}
	}

	if len(set.Year) == 0 {
		return nil, errs.New(errs.Empty, "value field is empty: Year")
	}

	return set, nil
}

// FixedAssets enumerates legal FixedAssets parameter values. Year is keyed
// by TableName, like Nipa and NiUnderlyingDetail.
type FixedAssets struct {
	TableName []string
	Year      map[string][]string
}

func (FixedAssets) Dataset() catalog.Dataset { return catalog.FixedAssets }

func BuildFixedAssets(dir string) (*FixedAssets, error) {
	tableName, err := loadParameterValues(dir, catalog.FixedAssets, catalog.TableName)
	if err != nil {
		return nil, err
	}

	year, err := loadParameterValues(dir, catalog.FixedAssets, catalog.Year)
	if err != nil {
		return nil, err
	}

	set := &FixedAssets{TableName: fieldKeys(tableName, "Key"), Year: yearsByTable(year)}
	if err := requireNonEmpty("TableName", set.TableName); err != nil {
		return nil, err
	}

	if len(set.Year) == 0 {
		return nil, errs.New(errs.Empty, "value field is empty: Year")
	}

	return set, nil
}

// Mne enumerates legal MNE parameter values.
type Mne struct {
	Classification        []string
	Country                []string
	DirectionOfInvestment []string
	GetFootnotes          []string
	Industry              []string
	Investment            []string
	NonbankAffiliatesOnly []string
	OwnershipLevel        []string
	ParentInvestment      []string
	SeriesID              []string
	State                 []string
	Year                  []string
}

func (Mne) Dataset() catalog.Dataset { return catalog.MNE }

func BuildMne(dir string) (*Mne, error) {
	fields := []catalog.ParameterName{
		catalog.Classification, catalog.Country, catalog.DirectionOfInvestment,
		catalog.GetFootnotes, catalog.Industry, catalog.Investment,
		catalog.NonbankAffiliatesOnly, catalog.OwnershipLevel,
		catalog.ParentInvestment, catalog.SeriesID, catalog.State, catalog.Year,
	}

	loaded := make(map[catalog.ParameterName][]string, len(fields))

	for _, f := range fields {
		tables, err := loadParameterValues(dir, catalog.MNE, f)
		if err != nil {
			return nil, err
		}

		values := fieldKeys(tables, "Key")
		if err := requireNonEmpty(string(f), values); err != nil {
			return nil, err
		}

		loaded[f] = values
	}

	return &Mne{
		Classification:        loaded[catalog.Classification],
		Country:               loaded[catalog.Country],
		DirectionOfInvestment: loaded[catalog.DirectionOfInvestment],
		GetFootnotes:          loaded[catalog.GetFootnotes],
		Industry:              loaded[catalog.Industry],
		Investment:            loaded[catalog.Investment],
		NonbankAffiliatesOnly: loaded[catalog.NonbankAffiliatesOnly],
		OwnershipLevel:        loaded[catalog.OwnershipLevel],
		ParentInvestment:      loaded[catalog.ParentInvestment],
		SeriesID:              loaded[catalog.SeriesID],
		State:                 loaded[catalog.State],
		Year:                  loaded[catalog.Year],
	}, nil
}

// Ita enumerates legal ITA parameter values.
type Ita struct {
	AreaOrCountry []string
	Frequency     []string
	Indicator     []string
	Year          []string
}

func (Ita) Dataset() catalog.Dataset { return catalog.ITA }

func BuildIta(dir string) (*Ita, error) {
	return buildFourField(dir, catalog.ITA, catalog.AreaOrCountry, catalog.Frequency, catalog.Indicator, catalog.Year,
		func(a, b, c, d []string) *Ita {
			return &Ita{AreaOrCountry: a, Frequency: b, Indicator: c, Year: d}
		})
}

// Iip enumerates legal IIP parameter values.
type Iip struct {
	Component        []string
	Frequency        []string
	TypeOfInvestment []string
	Year             []string
}

func (Iip) Dataset() catalog.Dataset { return catalog.IIP }

func BuildIip(dir string) (*Iip, error) {
	return buildFourField(dir, catalog.IIP, catalog.Component, catalog.Frequency, catalog.TypeOfInvestment, catalog.Year,
		func(a, b, c, d []string) *Iip {
			return &Iip{Component: a, Frequency: b, TypeOfInvestment: c, Year: d}
		})
}

// Regional enumerates legal Regional parameter values.
type Regional struct {
	GeoFips   []string
	LineCode  []string
	TableName []string
	Year      []string
}

func (Regional) Dataset() catalog.Dataset { return catalog.Regional }

func BuildRegional(dir string) (*Regional, error) {
	return buildFourField(dir, catalog.Regional, catalog.GeoFips, catalog.LineCode, catalog.TableName, catalog.Year,
		func(a, b, c, d []string) *Regional {
			return &Regional{GeoFips: a, LineCode: b, TableName: c, Year: d}
		})
}

// InputOutput enumerates legal InputOutput parameter values.
type InputOutput struct {
	TableID []string
	Year    []string
}

func (InputOutput) Dataset() catalog.Dataset { return catalog.InputOutput }

func BuildInputOutput(dir string) (*InputOutput, error) {
	tableID, err := loadParameterValues(dir, catalog.InputOutput, catalog.TableID)
	if err != nil {
		return nil, err
	}

	year, err := loadParameterValues(dir, catalog.InputOutput, catalog.Year)
	if err != nil {
		return nil, err
	}

	set := &InputOutput{TableID: fieldKeys(tableID, "Key"), Year: fieldKeys(year, "Key")}
	if err := requireNonEmpty("TableID", set.TableID); err != nil {
		return nil, err
	}

	if err := requireNonEmpty("Year", set.Year); err != nil {
		return nil, err
	}

	return set, nil
}

// IntlServTrade enumerates legal IntlServTrade parameter values.
type IntlServTrade struct {
	Affiliation   []string
	AreaOrCountry []string
	TradeDirection []string
	TypeOfService []string
	Year          []string
}

func (IntlServTrade) Dataset() catalog.Dataset { return catalog.IntlServTrade }

func BuildIntlServTrade(dir string) (*IntlServTrade, error) {
	fields := []catalog.ParameterName{
		catalog.Affiliation, catalog.AreaOrCountry, catalog.TradeDirection,
		catalog.TypeOfService, catalog.Year,
	}

	loaded, err := loadFields(dir, catalog.IntlServTrade, fields)
	if err != nil {
		return nil, err
	}

	return &IntlServTrade{
		Affiliation:    loaded[catalog.Affiliation],
		AreaOrCountry:  loaded[catalog.AreaOrCountry],
		TradeDirection: loaded[catalog.TradeDirection],
		TypeOfService:  loaded[catalog.TypeOfService],
		Year:           loaded[catalog.Year],
	}, nil
}

// IntlServSta enumerates legal IntlServSTA parameter values.
type IntlServSta struct {
	AreaOrCountry []string
	Channel       []string
	Destination   []string
	Industry      []string
	Year          []string
}

func (IntlServSta) Dataset() catalog.Dataset { return catalog.IntlServSTA }

func BuildIntlServSta(dir string) (*IntlServSta, error) {
	fields := []catalog.ParameterName{
		catalog.AreaOrCountry, catalog.Channel, catalog.Destination,
		catalog.Industry, catalog.Year,
	}

	loaded, err := loadFields(dir, catalog.IntlServSTA, fields)
	if err != nil {
		return nil, err
	}

	return &IntlServSta{
		AreaOrCountry: loaded[catalog.AreaOrCountry],
		Channel:       loaded[catalog.Channel],
		Destination:   loaded[catalog.Destination],
		Industry:      loaded[catalog.Industry],
		Year:          loaded[catalog.Year],
	}, nil
}

// GdpByIndustry and UnderlyingGdpByIndustry share the TableID-dependent
// Industry/Year special case from spec.md §4.4.
type GdpByIndustry struct {
	Frequency []string
	TableID   []string
	Industry  map[string][]string
	Year      map[string][]string
}

func (GdpByIndustry) Dataset() catalog.Dataset { return catalog.GDPbyIndustry }

func BuildGdpByIndustry(dir string) (*GdpByIndustry, error) {
	return buildGdpFamily(dir, catalog.GDPbyIndustry, func(freq, tableID []string, industry, year map[string][]string) *GdpByIndustry {
		return &GdpByIndustry{Frequency: freq, TableID: tableID, Industry: industry, Year: year}
	})
}

type UnderlyingGdpByIndustry struct {
	Frequency []string
	TableID   []string
	Industry  map[string][]string
	Year      map[string][]string
}

func (UnderlyingGdpByIndustry) Dataset() catalog.Dataset { return catalog.UnderlyingGDPbyIndustry }

func BuildUnderlyingGdpByIndustry(dir string) (*UnderlyingGdpByIndustry, error) {
	freq, tableID, industry, year, err := loadGdpFamily(dir, catalog.UnderlyingGDPbyIndustry)
	if err != nil {
		return nil, err
	}

	return &UnderlyingGdpByIndustry{Frequency: freq, TableID: tableID, Industry: industry, Year: year}, nil
}

func buildGdpFamily(dir string, dataset catalog.Dataset, wrap func([]string, []string, map[string][]string, map[string][]string) *GdpByIndustry) (*GdpByIndustry, error) {
	freq, tableID, industry, year, err := loadGdpFamily(dir, dataset)
	if err != nil {
		return nil, err
	}

	return wrap(freq, tableID, industry, year), nil
}

// loadGdpFamily implements spec.md §4.4's special case: TableID is read
// first (flat), then Industry and Year are read per table id from a
// {dataset}_{param}/ subdirectory.
func loadGdpFamily(dir string, dataset catalog.Dataset) (freq, tableID []string, industry, year map[string][]string, err error) {
	freqTables, err := loadParameterValues(dir, dataset, catalog.Frequency)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	freq = fieldKeys(freqTables, "Key")
	if err := requireNonEmpty("Frequency", freq); err != nil {
		return nil, nil, nil, nil, err
	}

	tableIDTables, err := loadParameterValues(dir, dataset, catalog.TableID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	tableID = fieldKeys(tableIDTables, "Key")
	if err := requireNonEmpty("TableID", tableID); err != nil {
		return nil, nil, nil, nil, err
	}

	industry = make(map[string][]string, len(tableID))
	year = make(map[string][]string, len(tableID))

	for _, id := range tableID {
		indTables, err := loadByTableID(dir, dataset, catalog.Industry, id)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		industry[id] = fieldKeys(indTables, "Key")

		yearTables, err := loadByTableID(dir, dataset, catalog.Year, id)
		if err != nil {
			return nil, nil, nil, nil, err
		}

		year[id] = fieldKeys(yearTables, "Key")
	}

	return freq, tableID, industry, year, nil
}

// ApiMetadata aggregates the DatasetName value table for APIDatasetMetadata.
type ApiMetadata struct {
	Items []envelope.ParameterValueTable
}

func (ApiMetadata) Dataset() catalog.Dataset { return catalog.APIDatasetMetadata }

func BuildApiMetadata(dir string) (*ApiMetadata, error) {
	items := make([]envelope.ParameterValueTable, 0)

	for _, name := range catalog.APIDatasetMetadata.Names() {
		tables, err := loadParameterValues(dir, catalog.APIDatasetMetadata, name)
		if err != nil {
			return nil, err
		}

		items = append(items, tables...)
	}

	if len(items) == 0 {
		return nil, errs.New(errs.Empty, "value field is empty for APIDatasetMetadata")
	}

	return &ApiMetadata{Items: items}, nil
}

// buildFourField is a small helper shared by the datasets whose value set
// is exactly four flat fields with no cross-parameter dependency.
func buildFourField[T any](
	dir string, dataset catalog.Dataset,
	p1, p2, p3, p4 catalog.ParameterName,
	wrap func(a, b, c, d []string) T,
) (T, error) {
	var zero T

	loaded, err := loadFields(dir, dataset, []catalog.ParameterName{p1, p2, p3, p4})
	if err != nil {
		return zero, err
	}

	return wrap(loaded[p1], loaded[p2], loaded[p3], loaded[p4]), nil
}

func loadFields(dir string, dataset catalog.Dataset, names []catalog.ParameterName) (map[catalog.ParameterName][]string, error) {
	out := make(map[catalog.ParameterName][]string, len(names))

	for _, name := range names {
		tables, err := loadParameterValues(dir, dataset, name)
		if err != nil {
			return nil, err
		}

		values := fieldKeys(tables, "Key")
		if err := requireNonEmpty(fmt.Sprintf("%s/%s", dataset, name), values); err != nil {
			return nil, err
		}

		out[name] = values
	}

	return out, nil
}
