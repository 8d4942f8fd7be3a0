package history_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/history"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
)

func TestAppendThenLoadAggregatesByPath(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, history.Append(dir, catalog.NIPA, history.Download, history.Record{
		ID: "a", Mode: history.Download, Path: "data/Nipa/Nipa_T10101.json",
		Status: tracker.Error, Length: 0, Time: time.Now(),
	}))
	require.NoError(t, history.Append(dir, catalog.NIPA, history.Download, history.Record{
		ID: "b", Mode: history.Download, Path: "data/Nipa/Nipa_T10101.json",
		Status: tracker.Success, Length: 512, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.NIPA, history.Download)
	require.NoError(t, err)

	assert.True(t, h.ContainsKey("data/Nipa/Nipa_T10101.json"))
	assert.True(t, *h.IsSuccess("data/Nipa/Nipa_T10101.json"), "the later, successful line must win")
}

func TestLoadMissingFileIsEmptyNotError(t *testing.T) {
	h, err := history.Load(t.TempDir(), catalog.ITA, history.LoadMode)
	require.NoError(t, err)
	assert.False(t, h.ContainsKey("anything"))
	assert.Nil(t, h.IsSuccess("anything"))
}

func TestIsSuccessAndIsErrorDistinguishRecordedFailure(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, history.Append(dir, catalog.ITA, history.Download, history.Record{
		ID: "c", Mode: history.Download, Path: "data/Ita/650.json",
		Status: tracker.Error, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)

	require.NotNil(t, h.IsSuccess("data/Ita/650.json"))
	assert.False(t, *h.IsSuccess("data/Ita/650.json"))
	require.NotNil(t, h.IsError("data/Ita/650.json"))
	assert.True(t, *h.IsError("data/Ita/650.json"))
}
