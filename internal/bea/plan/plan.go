// Package plan derives, per dataset, the lazy sequence of parameter maps
// that constitute a complete or filtered crawl.
package plan

import (
	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// Mode selects how a single parameter dimension is enumerated.
type Mode int

const (
	// All emits the single literal "ALL" (or "All", see Options.AllWord).
	All Mode = iota
	// Individual emits one combination per legal value.
	Individual
	// Multiple emits a user-specified subset.
	Multiple
)

// Options configures the iterator's per-parameter selection mode and, for
// Multiple, the chosen subset.
type Options struct {
	Mode     map[catalog.ParameterName]Mode
	Subset   map[catalog.ParameterName][]string
	AllWord  string // "ALL" or "All", per BEA's per-dataset convention.
}

func (o Options) modeFor(name catalog.ParameterName) Mode {
	if o.Mode == nil {
		return All
	}

	if m, ok := o.Mode[name]; ok {
		return m
	}

	return All
}

// withDefault returns a copy of o where name falls back to mode unless
// the caller already set an explicit mode for it — used by iterators
// whose per-dataset default diverges from the package-wide All default.
func (o Options) withDefault(name catalog.ParameterName, mode Mode) Options {
	if _, ok := o.Mode[name]; ok {
		return o
	}

	next := o
	next.Mode = make(map[catalog.ParameterName]Mode, len(o.Mode)+1)

	for k, v := range o.Mode {
		next.Mode[k] = v
	}

	next.Mode[name] = mode

	return next
}

func (o Options) allLiteral() string {
	if o.AllWord == "" {
		return "ALL"
	}

	return o.AllWord
}

// values resolves the sequence of wire strings an iterator should walk for
// a parameter, given legal values and the selection mode.
func (o Options) values(name catalog.ParameterName, legal []string) ([]string, error) {
	switch o.modeFor(name) {
	case All:
		return []string{o.allLiteral()}, nil
	case Individual:
		return legal, nil
	case Multiple:
		subset, ok := o.Subset[name]
		if !ok {
			return nil, errs.New(errs.Unimplemented, "Multiple selection requested without a subset for "+string(name))
		}

		return subset, nil
	default:
		return nil, errs.New(errs.Unimplemented, "unknown selection mode for "+string(name))
	}
}

// Map is one emitted combination: parameter name to wire value string.
type Map map[catalog.ParameterName]string

// Clone returns a shallow copy safe to mutate independently.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
