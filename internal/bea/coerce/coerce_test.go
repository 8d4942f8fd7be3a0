package coerce_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/coerce"
)

func TestJSONBool(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want bool
	}{
		{"number one", float64(1), true},
		{"number zero", float64(0), false},
		{"string one", "1", true},
		{"string zero", "0", false},
		{"string true", "true", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := coerce.JSONBool(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJSONFloatStripsCommas(t *testing.T) {
	got, err := coerce.JSONFloat("1,234.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != 1234.5 {
		t.Fatalf("want 1234.5, got %v", got)
	}
}

func TestJSONIntRejectsGarbage(t *testing.T) {
	_, err := coerce.JSONInt("not-a-number")
	require.Error(t, err)
}

func TestMapToStringUnwrapsDoubleStringified(t *testing.T) {
	m := map[string]any{"Note": `"hello"`}

	got, err := coerce.MapToString(m, "Note")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestMapToBoolKeyMissing(t *testing.T) {
	_, err := coerce.MapToBool(map[string]any{}, "Flag")
	require.Error(t, err)
}
