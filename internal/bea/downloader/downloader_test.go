package downloader_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/downloader"
	"github.com/correlator-io/beaharvest/internal/bea/history"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/bea/request"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
)

func newDownloader(t *testing.T, dir string) *downloader.Downloader {
	t.Helper()

	return &downloader.Downloader{
		Client:  request.NewClient(5 * time.Second),
		Tracker: tracker.New(30, 7, 100_000_000, 60*time.Second),
		DataDir: dir,
		Log:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}
}

func TestRunPersistsSuccessAndRecordsHistory(t *testing.T) {
	dir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"BEAAPI":{"Results":{"Data":[{"AreaOrCountry":"650"}]}}}`))
	}))
	defer srv.Close()

	req := request.New(srv.URL, "key", catalog.GetData, catalog.ITA, plan.Map{catalog.AreaOrCountry: "650"})
	d := newDownloader(t, dir)

	err := d.Run(context.Background(), []*request.Request{req}, 4)
	require.NoError(t, err)

	path, err := req.Destination(dir, false)
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)
	success := h.IsSuccess(path)
	require.NotNil(t, success)
	assert.True(t, *success)
}

func TestRunSkipsExistingDestinationWhenNotOverwriting(t *testing.T) {
	dir := t.TempDir()
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"BEAAPI":{"Results":{"Data":[{"AreaOrCountry":"650"}]}}}`))
	}))
	defer srv.Close()

	req := request.New(srv.URL, "key", catalog.GetData, catalog.ITA, plan.Map{catalog.AreaOrCountry: "650"})
	d := newDownloader(t, dir)

	require.NoError(t, d.Run(context.Background(), []*request.Request{req}, 4))
	require.NoError(t, d.Run(context.Background(), []*request.Request{req}, 4))

	assert.Equal(t, 1, calls, "second Run must skip the already-downloaded destination")
}

func TestRunMetersSizeCapFromRequestSizeHintNotActualResponse(t *testing.T) {
	dir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"BEAAPI":{"Results":{"Data":[{"AreaOrCountry":"650"}]}}}`))
	}))
	defer srv.Close()

	req := request.New(srv.URL, "key", catalog.GetData, catalog.ITA, plan.Map{catalog.AreaOrCountry: "650"}).
		WithSizeHint(200)

	d := &downloader.Downloader{
		Client:  request.NewClient(5 * time.Second),
		Tracker: tracker.New(30, 7, 1000, 60*time.Second),
		DataDir: dir,
		Log:     slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
	}

	require.NoError(t, d.Run(context.Background(), []*request.Request{req}, 4))

	assert.Equal(t, int64(800), d.Tracker.SizeAvailable(),
		"the tracker's byte budget is metered from the request's size hint, not the actual response length")
}

func TestRunAbortsOnRequestsExceeded(t *testing.T) {
	dir := t.TempDir()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"BEAAPI":{"Results":{"Error":{"@APIErrorCode":"429","@APIErrorDescription":"Limit exceeded"}}}}`))
	}))
	defer srv.Close()

	req := request.New(srv.URL, "key", catalog.GetData, catalog.ITA, plan.Map{catalog.AreaOrCountry: "650"})
	d := newDownloader(t, dir)

	err := d.Run(context.Background(), []*request.Request{req}, 4)
	require.Error(t, err)
}
