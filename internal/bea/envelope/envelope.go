// Package envelope decodes the BEA wrapper {BEAAPI:{Request, Results}} into
// a closed set of result kinds. Error envelopes are distinguished by key
// spelling, never by an explicit discriminator field.
package envelope

import (
	"encoding/json"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// Result is the closed sum of everything a BEA response can resolve to.
type Result interface {
	isResult()
}

// Datasets lists the dataset metadata returned by GetDataSetList.
type Datasets struct {
	Items []map[string]any
}

func (Datasets) isResult() {}

// Parameters lists the parameter descriptors returned by GetParameterList.
type Parameters struct {
	Items []map[string]any
}

func (Parameters) isResult() {}

// ParameterValueTable is one named value table within a ParameterValues
// result — either ordinary parameter fields or, for APIDatasetMetadata,
// a metadata record.
type ParameterValueTable struct {
	IsMetadata bool
	Fields     map[string]any
}

// ParameterValues lists the per-value tables returned by
// GetParameterValues / GetParameterValuesFiltered.
type ParameterValues struct {
	Tables []ParameterValueTable
}

func (ParameterValues) isResult() {}

// Data holds the typed records returned by GetData, not yet decoded into a
// dataset-specific row type (see internal/bea/records for that step).
type Data struct {
	Dataset catalog.Dataset
	Rows    []map[string]any
}

func (Data) isResult() {}

// APIError is BEA's ordinary error shape, keyed by "APIErrorCode".
type APIError struct {
	Code        string
	Description string
}

func (APIError) isResult()  {}
func (e APIError) Error() string { return "bea api error " + e.Code + ": " + e.Description }

// MneError is MNE's distinct error shape, keyed by "number".
type MneError struct {
	Number  string
	Message string
}

func (MneError) isResult()  {}
func (e MneError) Error() string { return "bea mne error " + e.Number + ": " + e.Message }

// RequestsExceeded is BEA's throttling signal, keyed by "@APIErrorCode".
type RequestsExceeded struct {
	Code        string
	Description string
}

func (RequestsExceeded) isResult() {}
func (e RequestsExceeded) Error() string {
	return "bea requests exceeded " + e.Code + ": " + e.Description
}

// Decode parses a raw BEA response body and dispatches to the appropriate
// Result variant, given the Method/Dataset the caller issued the request
// under. Error envelopes are attempted, in fixed order, before any success
// variant is considered.
func Decode(body []byte, method catalog.Method, dataset catalog.Dataset) (Result, error) {
	var top map[string]any
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, errs.Wrap(errs.NotObject, "response body is not a JSON object", err)
	}

	beaapi, ok := top["BEAAPI"].(map[string]any)
	if !ok {
		return nil, errs.New(errs.NotObject, "missing BEAAPI envelope")
	}

	results, ok := beaapi["Results"].(map[string]any)
	if !ok {
		return nil, errs.New(errs.NotObject, "missing Results field")
	}

	if errResult, err, matched := decodeError(results); matched {
		return errResult, err
	}

	return decodeSuccess(results, method, dataset)
}

// decodeError attempts ApiError, then MneError, then RequestsExceeded, in
// that fixed order, as required by the spec. matched is true whenever
// Results carries an "Error" object: for a recognized shape err is nil,
// and for an Error object matching none of the three shapes err carries
// the failure. matched is false only when there is no Error object.
func decodeError(results map[string]any) (Result, error, bool) {
	errObj, ok := results["Error"].(map[string]any)
	if !ok {
		return nil, nil, false
	}

	if code, ok := errObj["APIErrorCode"]; ok {
		return APIError{
			Code:        toStr(code),
			Description: toStr(errObj["APIErrorDescription"]),
		}, nil, true
	}

	if number, ok := errObj["number"]; ok {
		return MneError{
			Number:  toStr(number),
			Message: toStr(errObj["error"]),
		}, nil, true
	}

	if code, ok := errObj["@APIErrorCode"]; ok {
		return RequestsExceeded{
			Code:        toStr(code),
			Description: toStr(errObj["@APIErrorDescription"]),
		}, nil, true
	}

	return nil, errs.New(errs.ServerAPIError, "unrecognized error envelope shape"), true
}

func decodeSuccess(results map[string]any, method catalog.Method, dataset catalog.Dataset) (Result, error) {
	switch method {
	case catalog.GetDataSetList:
		items, err := asObjectArray(results, "Dataset")
		if err != nil {
			return nil, err
		}

		return Datasets{Items: items}, nil

	case catalog.GetParameterList:
		items, err := asObjectArray(results, "Parameter")
		if err != nil {
			return nil, err
		}

		return Parameters{Items: items}, nil

	case catalog.GetParameterValues, catalog.GetParameterValuesFiltered:
		items, err := asObjectArray(results, "ParamValue")
		if err != nil {
			return nil, err
		}

		tables := make([]ParameterValueTable, 0, len(items))
		for _, item := range items {
			tables = append(tables, ParameterValueTable{
				IsMetadata: dataset == catalog.APIDatasetMetadata,
				Fields:     item,
			})
		}

		return ParameterValues{Tables: tables}, nil

	case catalog.GetData:
		items, err := asObjectArray(results, "Data")
		if err != nil {
			return nil, err
		}

		return Data{Dataset: dataset, Rows: items}, nil

	default:
		return nil, errs.New(errs.VariantMissing, "unsupported method: "+method.String())
	}
}

// asObjectArray accepts either a JSON array or a single object under key —
// BEA returns both shapes for GetParameterList in particular.
func asObjectArray(results map[string]any, key string) ([]map[string]any, error) {
	raw, ok := results[key]
	if !ok {
		return nil, errs.New(errs.KeyMissing, "missing key: "+key)
	}

	switch t := raw.(type) {
	case []any:
		out := make([]map[string]any, 0, len(t))

		for _, item := range t {
			obj, ok := item.(map[string]any)
			if !ok {
				return nil, errs.New(errs.NotObject, "array element is not an object")
			}

			out = append(out, obj)
		}

		return out, nil
	case map[string]any:
		return []map[string]any{t}, nil
	default:
		return nil, errs.New(errs.NotArray, "value is neither an array nor an object")
	}
}

func toStr(v any) string {
	s, _ := v.(string)
	return s
}
