// Package coerce extracts typed scalars from BEA's loosely typed JSON
// responses, applying BEA's wire quirks: booleans may appear as
// "0"/"1"/0/1/"true"/"false", numbers may appear as JSON numbers or
// comma-bearing strings, and strings may arrive double-stringified.
package coerce

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// JSONStr converts a JSON value to a string, unwrapping a double-stringified
// JSON string if one is detected.
func JSONStr(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errs.New(errs.NotString, "value is not a JSON string")
	}

	if strings.HasPrefix(s, "\"") {
		var unwrapped string
		if err := json.Unmarshal([]byte(s), &unwrapped); err != nil {
			return "", errs.Wrap(errs.NotString, "double-stringified value failed to parse: "+s, err)
		}

		return unwrapped, nil
	}

	return s, nil
}

// JSONBool converts a JSON value to a bool per BEA convention: numeric 1,
// string "1", string "true" (any case) and JSON true are true; any other
// number, string or bool is false.
func JSONBool(v any) (bool, error) {
	switch t := v.(type) {
	case float64:
		return t == 1, nil
	case string:
		return t == "1" || strings.EqualFold(t, "true"), nil
	case bool:
		return t, nil
	default:
		return false, errs.New(errs.NotBool, "value is not a JSON bool/number/string")
	}
}

// JSONFloat converts a JSON value to a float64, stripping thousands
// separators from string-encoded numbers.
func JSONFloat(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case string:
		cleaned := strings.ReplaceAll(t, ",", "")

		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, errs.Wrap(errs.ParseFloat, "could not parse "+t+" to float", err)
		}

		return f, nil
	default:
		return 0, errs.New(errs.NotFloat, "value is not a JSON number or string")
	}
}

// JSONInt converts a JSON value to an int64, stripping thousands
// separators from string-encoded numbers.
func JSONInt(v any) (int64, error) {
	switch t := v.(type) {
	case float64:
		return int64(t), nil
	case string:
		n, err := strconv.ParseInt(strings.ReplaceAll(t, ",", ""), 10, 64)
		if err != nil {
			return 0, errs.Wrap(errs.ParseInt, "could not parse "+t+" to integer", err)
		}

		return n, nil
	default:
		return 0, errs.New(errs.NotInteger, "value is not a JSON number or string")
	}
}

// MapToString looks up key in m and coerces it to a string.
func MapToString(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", errs.New(errs.KeyMissing, "key missing: "+key)
	}

	return JSONStr(v)
}

// MapToBool looks up key in m and coerces it to a bool.
func MapToBool(m map[string]any, key string) (bool, error) {
	v, ok := m[key]
	if !ok {
		return false, errs.New(errs.KeyMissing, "key missing: "+key)
	}

	return JSONBool(v)
}

// MapToFloat looks up key in m and coerces it to a float64.
func MapToFloat(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, errs.New(errs.KeyMissing, "key missing: "+key)
	}

	return JSONFloat(v)
}

// MapToInt looks up key in m and coerces it to an int64.
func MapToInt(m map[string]any, key string) (int64, error) {
	v, ok := m[key]
	if !ok {
		return 0, errs.New(errs.KeyMissing, "key missing: "+key)
	}

	return JSONInt(v)
}
