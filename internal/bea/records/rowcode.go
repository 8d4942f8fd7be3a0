package records

import (
	"strings"

	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// RowCodeKind distinguishes an ordinary NAICS leaf code from a
// parent-industry rollup, a region heading, or an addendum marker.
type RowCodeKind int

const (
	Naics RowCodeKind = iota
	Parent
	Region
	Addendum
)

// RowCode is one MNE row's industry classification, resolved either from
// a numeric RowCode field or, when absent, from the row's title.
type RowCode struct {
	Kind  RowCodeKind
	Code  int64  // set for Naics and Parent
	Label string // set for Region and Addendum
}

// rowTitleCodes is the fixed title-to-NAICS-code dictionary BEA's MNE
// rows fall back to when the response carries no numeric RowCode,
// transcribed from the original's row-title match arms (row_code.rs).
var rowTitleCodes = map[string]RowCode{
	"Iron and steel mills":                                          {Kind: Naics, Code: 3311},
	"Machine shop products, turned products, and screws, nuts, and bolts": {Kind: Naics, Code: 3327},
	"Machine shops; turned products; and screws, nuts, and bolts":   {Kind: Naics, Code: 3327},
	"Wired and wireless telecommunications carriers":                {Kind: Naics, Code: 5171},
	"Nondepository credit intermediation, except branches and agencies":     {Kind: Naics, Code: 5222},
	"Non-depository credit intermediation, except branches and agencies":    {Kind: Naics, Code: 5222},
	"Other-Professional, scientific, and technical services":        {Kind: Naics, Code: 5419},
	"Petroleum storage for hire":                                    {Kind: Naics, Code: 42471},
	"Other-Retail trade":                                            {Kind: Naics, Code: 4599},
	"Other-Chemicals":                                               {Kind: Parent, Code: 325},
	"Other-Machinery":                                                {Kind: Parent, Code: 333},
	"Other-Computers and electronic products":                       {Kind: Parent, Code: 334},
	"Other-Transportation equipment":                                {Kind: Parent, Code: 336},
	"Other-Manufacturing":                                           {Kind: Parent, Code: 339},
	"Other-Wholesale trade":                                         {Kind: Parent, Code: 42},
	"Other-Information":                                              {Kind: Parent, Code: 51},
	"Other-Other industries":                                        {Kind: Parent, Code: 339},
	"Other-Mining":                                                   {Kind: Parent, Code: 21},
	"Fees, taxes, permits, licenses":                                 {Kind: Parent, Code: 92615},
	"Intellectual property rights":                                   {Kind: Parent, Code: 5132},
	"Land":                                                           {Kind: Parent, Code: 531},
	"Plant and equipment":                                            {Kind: Parent, Code: 23621},
	"Other---  All  --":                                              {Kind: Parent, Code: 3399},
	"Miscellaneous retailers":                                        {Kind: Parent, Code: 45999},
	"Cutlery and handtools":                                          {Kind: Parent, Code: 3322},
	"Far East:":          {Kind: Region, Label: "Far East"},
	"Far West:":          {Kind: Region, Label: "Far West"},
	"Rocky Mountains:":   {Kind: Region, Label: "Rocky Mountains"},
	"Southwest:":         {Kind: Region, Label: "Southwest"},
	"Southeast:":         {Kind: Region, Label: "Southeast"},
	"Plains:":            {Kind: Region, Label: "Plains"},
	"Great Lakes:":       {Kind: Region, Label: "Great Lakes"},
	"Mideast:":           {Kind: Region, Label: "Mideast"},
	"New England:":       {Kind: Region, Label: "New England"},
	"Addendum:":          {Kind: Addendum, Label: "Addendum"},
}

// ResolveRowCode returns the numeric RowCode if present, else falls back
// to the fixed title dictionary, else fails with RowCodeMissing —
// spec.md §4.10: "rows without a numeric RowCode are classified via
// their row title using a fixed dictionary ... unmatched titles fail."
func ResolveRowCode(code int64, hasCode bool, title string) (RowCode, error) {
	if hasCode {
		return RowCode{Kind: Naics, Code: code}, nil
	}

	if rc, ok := rowTitleCodes[strings.TrimSpace(title)]; ok {
		return rc, nil
	}

	return RowCode{}, errs.New(errs.RowCodeMissing, "no RowCode dictionary entry for title: "+title)
}
