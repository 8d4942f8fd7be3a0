package downloader_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/downloader"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/bea/request"
)

func TestLoadParallelReadsCachedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data", "Ita"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "data", "Ita", "650.json"),
		[]byte(`{"BEAAPI":{"Results":{"Data":[{"AreaOrCountry":"650"}]}}}`),
		0o644,
	))

	req := request.New("https://apps.bea.gov/api/data", "key", catalog.GetData, catalog.ITA, plan.Map{
		catalog.AreaOrCountry: "650",
	})

	got, err := downloader.LoadParallel([]*request.Request{req}, dir)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, catalog.ITA, got[0].Dataset)
}

func TestLoadParallelMissingFileFails(t *testing.T) {
	req := request.New("https://apps.bea.gov/api/data", "key", catalog.GetData, catalog.ITA, plan.Map{
		catalog.AreaOrCountry: "651",
	})

	_, err := downloader.LoadParallel([]*request.Request{req}, t.TempDir())
	require.Error(t, err)
}
