// Package valueset builds per-dataset ParameterValueSets from cached JSON
// under $BEA_DATA/parameter_values/, aggregating one file per parameter
// name into the dataset's typed struct.
package valueset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/envelope"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
)

// ValueSet is implemented by every per-dataset value set.
type ValueSet interface {
	Dataset() catalog.Dataset
}

// loadParameterValues reads parameter_values/{dataset}_{name}_parameter_values.json,
// decodes it as a ParameterValues envelope, and returns the raw value tables.
func loadParameterValues(dir string, dataset catalog.Dataset, name catalog.ParameterName) ([]envelope.ParameterValueTable, error) {
	path := filepath.Join(dir, "parameter_values", fmt.Sprintf("%s_%s_parameter_values.json", dataset, name))

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "opening "+path, err)
	}

	result, err := envelope.Decode(body, catalog.GetParameterValues, dataset)
	if err != nil {
		return nil, err
	}

	pv, ok := result.(envelope.ParameterValues)
	if !ok {
		return nil, errs.New(errs.ParameterValuesMissing, "results were not ParameterValues for "+path)
	}

	if len(pv.Tables) == 0 {
		return nil, errs.New(errs.Empty, "value field is empty for "+path)
	}

	return pv.Tables, nil
}

// loadByTableID reads the per-table-id variant used by the GDP families:
// parameter_values/{dataset}_{param}/{dataset}_{param}_byTableId_{id}_values.json.
func loadByTableID(dir string, dataset catalog.Dataset, name catalog.ParameterName, tableID string) ([]envelope.ParameterValueTable, error) {
	path := filepath.Join(
		dir, "parameter_values", fmt.Sprintf("%s_%s", dataset, name),
		fmt.Sprintf("%s_%s_byTableId_%s_values.json", dataset, name, tableID),
	)

	body, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.IO, "opening "+path, err)
	}

	result, err := envelope.Decode(body, catalog.GetParameterValues, dataset)
	if err != nil {
		return nil, err
	}

	pv, ok := result.(envelope.ParameterValues)
	if !ok {
		return nil, errs.New(errs.ParameterValuesMissing, "results were not ParameterValues for "+path)
	}

	return pv.Tables, nil
}

// fieldKeys extracts the string value of keyField from every table into a
// plain string slice, skipping tables where that field is absent or not a
// string — most BEA value tables are simple key/description pairs.
func fieldKeys(tables []envelope.ParameterValueTable, keyField string) []string {
	out := make([]string, 0, len(tables))

	for _, t := range tables {
		if v, ok := t.Fields[keyField]; ok {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
	}

	return out
}
