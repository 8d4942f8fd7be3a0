package plan

import (
	"iter"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/valueset"
)

// General walks names outermost-first, resolving each parameter's value
// sequence independently via Options. It covers every dataset whose
// parameters have no cross-parameter dependency: Iip, Regional,
// InputOutput, IntlServTrade, IntlServSta, and ApiMetadata's single-name
// case.
func General(names []catalog.ParameterName, legal map[catalog.ParameterName][]string, opts Options) iter.Seq[Map] {
	return func(yield func(Map) bool) {
		nestGeneral(names, legal, opts, Map{}, yield)
	}
}

func nestGeneral(names []catalog.ParameterName, legal map[catalog.ParameterName][]string, opts Options, acc Map, yield func(Map) bool) bool {
	if len(names) == 0 {
		return yield(acc.Clone())
	}

	name, rest := names[0], names[1:]

	values, err := opts.values(name, legal[name])
	if err != nil {
		return true
	}

	for _, v := range values {
		next := acc.Clone()
		next[name] = v

		if !nestGeneral(rest, legal, opts, next, yield) {
			return false
		}
	}

	return true
}

// GdpIterator implements spec.md §4.5's GDPbyIndustry ordering: TableID
// outermost, then Frequency, then Industry and Year, both of which depend
// on the current TableID (spec.md §4.4).
func GdpIterator(set *valueset.GdpByIndustry, opts Options) iter.Seq[Map] {
	return func(yield func(Map) bool) {
		tableIDs, err := opts.values(catalog.TableID, set.TableID)
		if err != nil {
			return
		}

		for _, tableID := range tableIDs {
			freqs, err := opts.values(catalog.Frequency, set.Frequency)
			if err != nil {
				continue
			}

			for _, freq := range freqs {
				industries, err := opts.values(catalog.Industry, set.Industry[tableID])
				if err != nil {
					continue
				}

				for _, industry := range industries {
					years, err := opts.values(catalog.Year, set.Year[tableID])
					if err != nil {
						continue
					}

					for _, year := range years {
						m := Map{
							catalog.TableID:   tableID,
							catalog.Frequency: freq,
							catalog.Industry:  industry,
							catalog.Year:      year,
						}
						if !yield(m) {
							return
						}
					}
				}
			}
		}
	}
}

// UnderlyingGdpIterator is GdpIterator's counterpart for
// UnderlyingGDPbyIndustry, which shares the identical TableID-dependent
// shape.
func UnderlyingGdpIterator(set *valueset.UnderlyingGdpByIndustry, opts Options) iter.Seq[Map] {
	adapted := &valueset.GdpByIndustry{
		Frequency: set.Frequency,
		TableID:   set.TableID,
		Industry:  set.Industry,
		Year:      set.Year,
	}

	return GdpIterator(adapted, opts)
}

// MneKind selects which family of MNE parameters is in play: Direct
// Investment (no ownership-level dimension) or Activities of
// Multinational Enterprises (adds OwnershipLevel, NonbankAffiliatesOnly).
type MneKind int

const (
	DI MneKind = iota
	AMNE
)

const mneParent = "parent"

// MneIterator implements spec.md §4.5's MNE ordering: a MneKind selector
// that controls whether OwnershipLevel/NonbankAffiliatesOnly appear at
// all, then OwnershipLevel → NonbankAffiliates → DirectionOfInvestment →
// Classification → Country → Industry → SeriesID → Year. When
// DirectionOfInvestment == "parent", OwnershipLevel is forced to "1" and
// the 0 combination is silently skipped.
func MneIterator(set *valueset.Mne, kind MneKind, opts Options) iter.Seq[Map] {
	return func(yield func(Map) bool) {
		ownershipLevels := []string{""}
		nonbank := []string{""}

		if kind == AMNE {
			var err error

			ownershipLevels, err = opts.values(catalog.OwnershipLevel, set.OwnershipLevel)
			if err != nil {
				return
			}

			nonbank, err = opts.values(catalog.NonbankAffiliatesOnly, set.NonbankAffiliatesOnly)
			if err != nil {
				return
			}
		}

		directions, err := opts.values(catalog.DirectionOfInvestment, set.DirectionOfInvestment)
		if err != nil {
			return
		}

		classifications, err := opts.values(catalog.Classification, set.Classification)
		if err != nil {
			return
		}

		countries, err := opts.values(catalog.Country, set.Country)
		if err != nil {
			return
		}

		industries, err := opts.values(catalog.Industry, set.Industry)
		if err != nil {
			return
		}

		seriesIDs, err := opts.values(catalog.SeriesID, set.SeriesID)
		if err != nil {
			return
		}

		years, err := opts.values(catalog.Year, set.Year)
		if err != nil {
			return
		}

		for _, ownership := range ownershipLevels {
			for _, bank := range nonbank {
				for _, direction := range directions {
					effectiveOwnership := ownership
					if direction == mneParent && kind == AMNE && ownership != "1" {
						continue // forced to 1; the 0 combination is silently skipped.
					}

					for _, classification := range classifications {
						for _, country := range countries {
							for _, industry := range industries {
								for _, series := range seriesIDs {
									for _, year := range years {
										m := Map{
											catalog.DirectionOfInvestment: direction,
											catalog.Classification:        classification,
											catalog.Country:                country,
											catalog.Industry:               industry,
											catalog.SeriesID:               series,
											catalog.Year:                   year,
										}

										if kind == AMNE {
											m[catalog.OwnershipLevel] = effectiveOwnership
											m[catalog.NonbankAffiliatesOnly] = bank
										}

										if !yield(m) {
											return
										}
									}
								}
							}
						}
					}
				}
			}
		}
	}
}

// nipaFamily is the shape shared by Nipa, NiUnderlyingDetail, and
// FixedAssets: a TableName-keyed Year map plus a Frequency dimension
// (FixedAssets has no Frequency; pass nil).
type nipaFamily struct {
	TableName []string
	Frequency []string // nil for datasets without a Frequency parameter (FixedAssets).
	Year      map[string][]string
	Extra     map[catalog.ParameterName][]string // e.g. ShowMillions for Nipa.
}

// nipaIterator implements spec.md §4.5's NIPA-family rule: Year legal
// values depend on the (TableName, Frequency) pair, recomputed whenever
// either changes. TableName is outermost since it alone determines the
// Year list in this module's simplified representation (see DESIGN.md);
// Frequency still participates in the loop per the spec's stated pair.
func nipaIterator(f nipaFamily, opts Options) iter.Seq[Map] {
	return func(yield func(Map) bool) {
		tableNames, err := opts.values(catalog.TableName, f.TableName)
		if err != nil {
			return
		}

		freqs := f.Frequency
		if freqs == nil {
			freqs = []string{""}
		}

		for _, tableName := range tableNames {
			resolvedFreqs := freqs
			if f.Frequency != nil {
				resolvedFreqs, err = opts.values(catalog.Frequency, f.Frequency)
				if err != nil {
					continue
				}
			}

			for _, freq := range resolvedFreqs {
				years, err := opts.values(catalog.Year, f.Year[tableName])
				if err != nil {
					continue
				}

				extraNames := make([]catalog.ParameterName, 0, len(f.Extra))
				for name := range f.Extra {
					extraNames = append(extraNames, name)
				}

				for _, year := range years {
					base := Map{catalog.TableName: tableName, catalog.Year: year}
					if f.Frequency != nil {
						base[catalog.Frequency] = freq
					}

					if !nestGeneral(extraNames, f.Extra, opts, base, yield) {
						return
					}
				}
			}
		}
	}
}

// NipaIterator builds the NIPA dataset's plan iterator.
func NipaIterator(set *valueset.Nipa, opts Options) iter.Seq[Map] {
	return nipaIterator(nipaFamily{
		TableName: set.TableName,
		Frequency: set.Frequency,
		Year:      set.Year,
		Extra:     map[catalog.ParameterName][]string{catalog.ShowMillions: set.ShowMillions},
	}, opts)
}

// NiUnderlyingDetailIterator builds the NIUnderlyingDetail plan iterator.
func NiUnderlyingDetailIterator(set *valueset.NiUnderlyingDetail, opts Options) iter.Seq[Map] {
	return nipaIterator(nipaFamily{
		TableName: set.TableName,
		Frequency: set.Frequency,
		Year:      set.Year,
	}, opts)
}

// FixedAssetsIterator builds the FixedAssets plan iterator. FixedAssets
// has no Frequency parameter.
func FixedAssetsIterator(set *valueset.FixedAssets, opts Options) iter.Seq[Map] {
	return nipaIterator(nipaFamily{
		TableName: set.TableName,
		Year:      set.Year,
	}, opts)
}

// ItaIterator implements spec.md §4.5's ITA default: one combination per
// AreaOrCountry, with Indicator, Frequency, and Year forced to the
// literal "All" — the per-country response already contains the full
// cross-product. AreaOrCountry defaults to Individual rather than the
// package-wide All default, since a literal "ALL" country value would
// contradict the "one request per country" default spec.md describes; a
// caller may still override it (e.g. to Multiple, for a subset of
// countries).
func ItaIterator(set *valueset.Ita, opts Options) iter.Seq[Map] {
	opts = opts.withDefault(catalog.AreaOrCountry, Individual)

	return func(yield func(Map) bool) {
		countries, err := opts.values(catalog.AreaOrCountry, set.AreaOrCountry)
		if err != nil {
			return
		}

		for _, country := range countries {
			m := Map{
				catalog.AreaOrCountry: country,
				catalog.Indicator:     "All",
				catalog.Frequency:     "All",
				catalog.Year:          "All",
			}
			if !yield(m) {
				return
			}
		}
	}
}
