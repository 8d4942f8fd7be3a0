package request_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/history"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/bea/request"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
)

func itaRequest(country string) *request.Request {
	return request.New("https://apps.bea.gov/api/data", "key", catalog.GetData, catalog.ITA, plan.Map{
		catalog.AreaOrCountry: country,
	})
}

func TestQueueExcludeDropsRecordedPaths(t *testing.T) {
	dir := t.TempDir()
	req650, req651 := itaRequest("650"), itaRequest("651")

	path650, err := req650.Destination(dir, false)
	require.NoError(t, err)

	require.NoError(t, history.Append(dir, catalog.ITA, history.Download, history.Record{
		ID: "a", Path: path650, Status: tracker.Success, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)

	q := request.NewQueue(dir, []*request.Request{req650, req651})
	require.NoError(t, q.Exclude(h))

	require.Len(t, q.Requests, 1)
	remaining, err := q.Requests[0].Destination(dir, false)
	require.NoError(t, err)

	path651, err := req651.Destination(dir, false)
	require.NoError(t, err)
	assert.Equal(t, path651, remaining)
}

func TestQueueApplySizeHintsFromRecordedLength(t *testing.T) {
	dir := t.TempDir()
	req650, req651 := itaRequest("650"), itaRequest("651")

	path650, err := req650.Destination(dir, false)
	require.NoError(t, err)

	require.NoError(t, history.Append(dir, catalog.ITA, history.Download, history.Record{
		ID: "a", Path: path650, Status: tracker.Success, Length: 4096, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)

	q := request.NewQueue(dir, []*request.Request{req650, req651})
	require.NoError(t, q.ApplySizeHints(h))

	assert.Equal(t, int64(4096), q.Requests[0].SizeHint())
	assert.Equal(t, int64(0), q.Requests[1].SizeHint(), "no history record means no size hint")
}

func TestQueueSuccessesStrictDropsUnrecorded(t *testing.T) {
	dir := t.TempDir()
	req650, req651 := itaRequest("650"), itaRequest("651")

	path650, err := req650.Destination(dir, false)
	require.NoError(t, err)

	require.NoError(t, history.Append(dir, catalog.ITA, history.Download, history.Record{
		ID: "a", Path: path650, Status: tracker.Success, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)

	q := request.NewQueue(dir, []*request.Request{req650, req651})
	require.NoError(t, q.Successes(h, true))

	require.Len(t, q.Requests, 1)
}

func TestQueueErrorsNonStrictKeepsUnrecorded(t *testing.T) {
	dir := t.TempDir()
	req650, req651 := itaRequest("650"), itaRequest("651")

	path650, err := req650.Destination(dir, false)
	require.NoError(t, err)

	require.NoError(t, history.Append(dir, catalog.ITA, history.Download, history.Record{
		ID: "a", Path: path650, Status: tracker.Error, Time: time.Now(),
	}))

	h, err := history.Load(dir, catalog.ITA, history.Download)
	require.NoError(t, err)

	q := request.NewQueue(dir, []*request.Request{req650, req651})
	require.NoError(t, q.Errors(h, false))

	require.Len(t, q.Requests, 2) // 650 is recorded Error, 651 is absent but kept (non-strict)
}
