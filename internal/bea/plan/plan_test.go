package plan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/bea/valueset"
)

func TestGeneralAllModeEmitsLiteral(t *testing.T) {
	legal := map[catalog.ParameterName][]string{
		catalog.Component: {"Assets", "Liab"},
	}

	var got []plan.Map
	for m := range plan.General([]catalog.ParameterName{catalog.Component}, legal, plan.Options{}) {
		got = append(got, m)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "ALL", got[0][catalog.Component])
}

func TestGeneralIndividualModeEmitsEveryValue(t *testing.T) {
	legal := map[catalog.ParameterName][]string{
		catalog.Component: {"Assets", "Liab"},
	}
	opts := plan.Options{Mode: map[catalog.ParameterName]plan.Mode{catalog.Component: plan.Individual}}

	var got []plan.Map
	for m := range plan.General([]catalog.ParameterName{catalog.Component}, legal, opts) {
		got = append(got, m)
	}

	require.Len(t, got, 2)
}

func TestGeneralMultipleWithoutSubsetSkipsSilently(t *testing.T) {
	legal := map[catalog.ParameterName][]string{
		catalog.Component: {"Assets", "Liab"},
	}
	opts := plan.Options{Mode: map[catalog.ParameterName]plan.Mode{catalog.Component: plan.Multiple}}

	count := 0
	for range plan.General([]catalog.ParameterName{catalog.Component}, legal, opts) {
		count++
	}

	assert.Equal(t, 0, count)
}

func TestGdpIteratorScopesIndustryAndYearByTableID(t *testing.T) {
	set := &valueset.GdpByIndustry{
		Frequency: []string{"A"},
		TableID:   []string{"1", "2"},
		Industry:  map[string][]string{"1": {"11"}, "2": {"21", "22"}},
		Year:      map[string][]string{"1": {"2020"}, "2": {"2021"}},
	}

	var got []plan.Map
	for m := range plan.GdpIterator(set, plan.Options{
		Mode: map[catalog.ParameterName]plan.Mode{
			catalog.TableID: plan.Individual, catalog.Industry: plan.Individual,
			catalog.Year: plan.Individual,
		},
	}) {
		got = append(got, m)
	}

	require.Len(t, got, 3) // tableID 1: 1 industry, tableID 2: 2 industries
	for _, m := range got {
		if m[catalog.TableID] == "1" {
			assert.Equal(t, "11", m[catalog.Industry])
			assert.Equal(t, "2020", m[catalog.Year])
		}
	}
}

func TestMneIteratorForcesOwnershipWhenDirectionIsParent(t *testing.T) {
	set := &valueset.Mne{
		OwnershipLevel:        []string{"0", "1"},
		NonbankAffiliatesOnly: []string{"0"},
		DirectionOfInvestment: []string{"parent", "outward"},
		Classification:        []string{"Country"},
		Country:               []string{"650"},
		Industry:              []string{"all"},
		SeriesID:              []string{"4"},
		Year:                  []string{"2022"},
	}
	opts := plan.Options{Mode: map[catalog.ParameterName]plan.Mode{
		catalog.OwnershipLevel: plan.Individual, catalog.DirectionOfInvestment: plan.Individual,
	}}

	for m := range plan.MneIterator(set, plan.AMNE, opts) {
		if m[catalog.DirectionOfInvestment] == "parent" {
			assert.Equal(t, "1", m[catalog.OwnershipLevel], "the 0 combination must be skipped for parent")
		}
	}
}

func TestItaIteratorForcesAllLiteralsExceptCountry(t *testing.T) {
	set := &valueset.Ita{AreaOrCountry: []string{"650", "651"}}

	var got []plan.Map
	for m := range plan.ItaIterator(set, plan.Options{}) {
		got = append(got, m)
		assert.Equal(t, "All", m[catalog.Indicator])
		assert.Equal(t, "All", m[catalog.Frequency])
		assert.Equal(t, "All", m[catalog.Year])
	}

	assert.Len(t, got, 2)
}
