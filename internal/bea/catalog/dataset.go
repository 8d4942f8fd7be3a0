// Package catalog holds the closed enumerations BEA's wire protocol is
// built on: Dataset, ParameterName, and Method. Per the harvester's scope,
// these are data, not logic — an API addition shows up as an
// UnknownValue/drift-check failure, never a silent omission.
package catalog

import "github.com/correlator-io/beaharvest/internal/bea/errs"

// Dataset is one of BEA's named data corpora.
type Dataset string

const (
	NIPA                   Dataset = "NIPA"
	FixedAssets            Dataset = "FixedAssets"
	MNE                    Dataset = "MNE"
	ITA                    Dataset = "ITA"
	IIP                    Dataset = "IIP"
	Regional               Dataset = "Regional"
	GDPbyIndustry          Dataset = "GDPbyIndustry"
	UnderlyingGDPbyIndustry Dataset = "UnderlyingGDPbyIndustry"
	InputOutput            Dataset = "InputOutput"
	IntlServTrade          Dataset = "IntlServTrade"
	IntlServSTA            Dataset = "IntlServSTA"
	APIDatasetMetadata     Dataset = "APIDatasetMetadata"
	NIUnderlyingDetail     Dataset = "NIUnderlyingDetail"
)

// AllDatasets returns every closed Dataset variant, in declaration order.
func AllDatasets() []Dataset {
	return []Dataset{
		NIPA, FixedAssets, MNE, ITA, IIP, Regional, GDPbyIndustry,
		UnderlyingGDPbyIndustry, InputOutput, IntlServTrade, IntlServSTA,
		APIDatasetMetadata, NIUnderlyingDetail,
	}
}

func (d Dataset) String() string { return string(d) }

// ParseDataset parses the wire string BEA uses for a dataset name.
func ParseDataset(wire string) (Dataset, error) {
	for _, d := range AllDatasets() {
		if string(d) == wire {
			return d, nil
		}
	}

	return "", errs.New(errs.UnknownValue, "Dataset: "+wire)
}

// Names enumerates the parameter names valid for this dataset. The list is
// hard-coded, not derived from the API, by design (see package doc).
func (d Dataset) Names() []ParameterName {
	switch d {
	case NIPA:
		return []ParameterName{Frequency, ShowMillions, TableID, TableName, Year}
	case NIUnderlyingDetail:
		return []ParameterName{Frequency, TableID, TableName, Year}
	case FixedAssets:
		return []ParameterName{TableName, Year}
	case MNE:
		return []ParameterName{
			Classification, Country, DirectionOfInvestment, GetFootnotes,
			Industry, Investment, NonbankAffiliatesOnly, OwnershipLevel,
			ParentInvestment, SeriesID, State, Year,
		}
	case ITA:
		return []ParameterName{AreaOrCountry, Frequency, Indicator, Year}
	case IIP:
		return []ParameterName{Component, Frequency, TypeOfInvestment, Year}
	case Regional:
		return []ParameterName{GeoFips, LineCode, TableName, Year}
	case GDPbyIndustry, UnderlyingGDPbyIndustry:
		return []ParameterName{Frequency, Industry, TableID, Year}
	case InputOutput:
		return []ParameterName{TableID, Year}
	case IntlServTrade:
		return []ParameterName{Affiliation, AreaOrCountry, TradeDirection, TypeOfService, Year}
	case IntlServSTA:
		return []ParameterName{AreaOrCountry, Channel, Destination, Industry, Year}
	case APIDatasetMetadata:
		return []ParameterName{DatasetName}
	default:
		return nil
	}
}
