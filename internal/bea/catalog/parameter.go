package catalog

import "github.com/correlator-io/beaharvest/internal/bea/errs"

// ParameterName is a named input to a Method; validity is contextual to
// the Dataset (see Dataset.Names).
type ParameterName string

const (
	TableName             ParameterName = "TableName"
	Year                  ParameterName = "Year"
	Frequency             ParameterName = "Frequency"
	DirectionOfInvestment ParameterName = "DirectionOfInvestment"
	Industry              ParameterName = "Industry"
	TableID               ParameterName = "TableID"
	ShowMillions          ParameterName = "ShowMillions"
	GetFootnotes          ParameterName = "GetFootnotes"
	NonbankAffiliatesOnly ParameterName = "NonbankAffiliatesOnly"
	OwnershipLevel        ParameterName = "OwnershipLevel"
	Classification        ParameterName = "Classification"
	Country               ParameterName = "Country"
	SeriesID              ParameterName = "SeriesID"
	AreaOrCountry         ParameterName = "AreaOrCountry"
	Indicator             ParameterName = "Indicator"
	GeoFips               ParameterName = "GeoFips"
	LineCode              ParameterName = "LineCode"
	Component             ParameterName = "Component"
	TypeOfInvestment      ParameterName = "TypeOfInvestment"
	Affiliation           ParameterName = "Affiliation"
	TradeDirection        ParameterName = "TradeDirection"
	TypeOfService         ParameterName = "TypeOfService"
	Channel               ParameterName = "Channel"
	Destination           ParameterName = "Destination"
	State                 ParameterName = "State"
	Investment            ParameterName = "Investment"
	ParentInvestment      ParameterName = "ParentInvestment"
	ResultFormat          ParameterName = "ResultFormat"
	DatasetName           ParameterName = "DatasetName"
	TargetParameter       ParameterName = "TargetParameter"
)

// AllParameterNames returns every closed ParameterName variant.
func AllParameterNames() []ParameterName {
	return []ParameterName{
		TableName, Year, Frequency, DirectionOfInvestment, Industry, TableID,
		ShowMillions, GetFootnotes, NonbankAffiliatesOnly, OwnershipLevel,
		Classification, Country, SeriesID, AreaOrCountry, Indicator, GeoFips,
		LineCode, Component, TypeOfInvestment, Affiliation, TradeDirection,
		TypeOfService, Channel, Destination, State, Investment,
		ParentInvestment, ResultFormat, DatasetName, TargetParameter,
	}
}

func (p ParameterName) String() string { return string(p) }

// ParseParameterName parses the wire string BEA uses for a parameter name.
func ParseParameterName(wire string) (ParameterName, error) {
	for _, p := range AllParameterNames() {
		if string(p) == wire {
			return p, nil
		}
	}

	return "", errs.New(errs.UnknownValue, "ParameterName: "+wire)
}

// Method is one of the five REST verbs BEA's API exposes.
type Method string

const (
	GetData                    Method = "GetData"
	GetDataSetList             Method = "GetDataSetList"
	GetParameterList           Method = "GetParameterList"
	GetParameterValues         Method = "GetParameterValues"
	GetParameterValuesFiltered Method = "GetParameterValuesFiltered"
)

// AllMethods returns every closed Method variant.
func AllMethods() []Method {
	return []Method{
		GetData, GetDataSetList, GetParameterList, GetParameterValues,
		GetParameterValuesFiltered,
	}
}

func (m Method) String() string { return string(m) }

// ParseMethod parses the wire string BEA uses for a Method.
func ParseMethod(wire string) (Method, error) {
	for _, m := range AllMethods() {
		if string(m) == wire {
			return m, nil
		}
	}

	return "", errs.New(errs.UnknownValue, "Method: "+wire)
}
