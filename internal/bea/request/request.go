// Package request builds BEA query URLs and maps them to deterministic
// on-disk destinations, per spec.md §4.6.
package request

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
)

// userIDParam is the query parameter BEA reserves for the caller's API key.
const userIDParam = "UserID"

// Request holds everything needed to build a BEA query URL and, once
// resolved, its destination file path. sizeHint, when known, is the prior
// crawl's recorded payload length for this same destination (spec.md §3:
// "Request — {api_key, options, base_url, query_map, size_hint?}"); it
// meters the downloader's rate-limit wait loop (spec.md §4.8 step 4) but
// plays no part in building the URL or destination path.
type Request struct {
	baseURL  string
	key      string
	method   catalog.Method
	dataset  catalog.Dataset
	params   plan.Map
	sizeHint int64
}

// New installs key under the reserved user-id parameter and seeds the
// query map from options' resolved combination.
func New(baseURL, key string, method catalog.Method, dataset catalog.Dataset, params plan.Map) *Request {
	return &Request{baseURL: baseURL, key: key, method: method, dataset: dataset, params: params.Clone()}
}

// WithParams extends the query map, overwriting on key collision — used
// to mutate one dimension per loop iteration without re-serializing the
// rest.
func (r *Request) WithParams(partial plan.Map) *Request {
	next := r.params.Clone()
	for k, v := range partial {
		next[k] = v
	}

	return &Request{
		baseURL: r.baseURL, key: r.key, method: r.method, dataset: r.dataset,
		params: next, sizeHint: r.sizeHint,
	}
}

// WithSizeHint records size, in bytes, as this request's expected payload
// length — normally the length History recorded the last time this same
// destination was downloaded. A size hint of zero means unknown.
func (r *Request) WithSizeHint(size int64) *Request {
	return &Request{
		baseURL: r.baseURL, key: r.key, method: r.method, dataset: r.dataset,
		params: r.params, sizeHint: size,
	}
}

// SizeHint returns the request's known expected payload size, or zero if
// none is known.
func (r *Request) SizeHint() int64 { return r.sizeHint }

// URL renders the full query URL, including the result-format and method
// parameters BEA requires on every call.
func (r *Request) URL() string {
	q := url.Values{}
	q.Set(userIDParam, r.key)
	q.Set(string(catalog.ResultFormat), "JSON")
	q.Set("method", r.method.String())
	q.Set(string(catalog.DatasetName), r.dataset.String())

	for name, value := range r.params {
		q.Set(string(name), value)
	}

	return r.baseURL + "?" + q.Encode()
}

// Dataset returns the dataset this request targets.
func (r *Request) Dataset() catalog.Dataset { return r.dataset }

// Method returns the REST verb this request was built for.
func (r *Request) Method() catalog.Method { return r.method }

// param reads a required query parameter, failing with KeyMissing if
// absent — destination() depends on several parameters always being
// present in the current combination.
func (r *Request) param(name catalog.ParameterName) (string, error) {
	v, ok := r.params[name]
	if !ok || v == "" {
		return "", errs.New(errs.KeyMissing, "missing required parameter: "+string(name))
	}

	return v, nil
}

// Destination implements spec.md §4.6's per-dataset path schema. When
// create is true, every missing ancestor directory is created.
func (r *Request) Destination(dataDir string, create bool) (string, error) {
	segments, err := r.destinationSegments()
	if err != nil {
		return "", err
	}

	path := filepath.Join(append([]string{dataDir, "data"}, segments...)...)

	if create {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", errs.Wrap(errs.IO, "creating destination directory", err)
		}
	}

	return path, nil
}

func (r *Request) destinationSegments() ([]string, error) {
	switch r.dataset {
	case catalog.NIPA:
		return r.nipaSegments()
	case catalog.NIUnderlyingDetail, catalog.FixedAssets:
		return r.flatTableNameSegments()
	case catalog.MNE:
		return r.mneSegments()
	case catalog.GDPbyIndustry, catalog.UnderlyingGDPbyIndustry:
		return r.gdpSegments()
	case catalog.ITA:
		return r.itaSegments()
	default:
		return nil, errs.New(errs.VariantMissing, "no destination schema for dataset: "+r.dataset.String())
	}
}

func (r *Request) nipaSegments() ([]string, error) {
	tableName, err := r.param(catalog.TableName)
	if err != nil {
		return nil, err
	}

	suffix := ""
	if showMillions, _ := r.param(catalog.ShowMillions); strings.EqualFold(showMillions, "Yes") {
		suffix = "_millions"
	}

	return []string{"Nipa", fmt.Sprintf("Nipa_%s%s.json", tableName, suffix)}, nil
}

func (r *Request) flatTableNameSegments() ([]string, error) {
	tableName, err := r.param(catalog.TableName)
	if err != nil {
		return nil, err
	}

	name := r.dataset.String()

	return []string{name, fmt.Sprintf("%s_%s.json", name, tableName)}, nil
}

// mneSegments implements both the DI and AMNE destination schemas. AMNE's
// suffix is keyed off the (OwnershipLevel, NonbankAffiliatesOnly) pair:
// (0,0) none, (0,1) "_nonbank", (1,0) and (1,1) both "_ownership_nonbank"
// — the last pair's collision is a known schema defect carried from the
// source, not fixed here (spec.md §9, §4.6).
func (r *Request) mneSegments() ([]string, error) {
	country, err := r.param(catalog.Country)
	if err != nil {
		return nil, err
	}

	classification, err := r.param(catalog.Classification)
	if err != nil {
		return nil, err
	}

	direction, err := r.param(catalog.DirectionOfInvestment)
	if err != nil {
		return nil, err
	}

	base := fmt.Sprintf("%s_%s.json", classification, direction)

	if _, ok := r.params[catalog.OwnershipLevel]; !ok {
		return []string{"Mne", "DirectInvestment", country, base}, nil
	}

	ownership, _ := r.param(catalog.OwnershipLevel)
	nonbank, _ := r.param(catalog.NonbankAffiliatesOnly)

	var suffix string

	switch {
	case ownership == "1":
		// (1,0) and (1,1) both collide on "_ownership_nonbank" — a known
		// schema defect carried from the source, not fixed here (spec.md
		// §9, §4.6).
		suffix = "_ownership_nonbank"
	case nonbank == "1":
		suffix = "_nonbank"
	}

	name := fmt.Sprintf("%s_%s%s.json", classification, direction, suffix)

	return []string{"Mne", "AMNE", country, name}, nil
}

func (r *Request) gdpSegments() ([]string, error) {
	tableID, err := r.param(catalog.TableID)
	if err != nil {
		return nil, err
	}

	name := tableID

	if freq, ok := r.params[catalog.Frequency]; ok && !isAllLiteral(freq) {
		name += "_" + freq
	}

	if industry, ok := r.params[catalog.Industry]; ok && !isAllLiteral(industry) {
		name += "_" + industry
	}

	if year, ok := r.params[catalog.Year]; ok && !isAllLiteral(year) {
		name += "_" + year
	}

	return []string{"GDPbyIndustry", name + ".json"}, nil
}

func (r *Request) itaSegments() ([]string, error) {
	country, err := r.param(catalog.AreaOrCountry)
	if err != nil {
		return nil, err
	}

	return []string{"Ita", country + ".json"}, nil
}

func isAllLiteral(v string) bool {
	return strings.EqualFold(v, "ALL") || strings.EqualFold(v, "A,Q")
}

// Client issues HTTP GETs with transient-error retry, never retrying a
// well-formed BEA error envelope (ApiError, MneError, RequestsExceeded
// decode as ordinary successful HTTP responses and are handled by the
// caller, not retried here).
type Client struct {
	HTTP       *http.Client
	MaxElapsed time.Duration
}

// NewClient returns a Client with the teacher's retry shape: bounded
// elapsed time, unlimited attempts within it.
func NewClient(maxElapsed time.Duration) *Client {
	return &Client{HTTP: &http.Client{Timeout: 30 * time.Second}, MaxElapsed: maxElapsed}
}

// Get issues req's URL, retrying on transport errors and 5xx responses.
func (c *Client) Get(ctx context.Context, req *Request) ([]byte, int64, error) {
	var body []byte

	var size int64

	op := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL(), nil)
		if err != nil {
			return backoff.Permanent(errs.Wrap(errs.IO, "building request", err))
		}

		resp, err := c.HTTP.Do(httpReq)
		if err != nil {
			return errs.Wrap(errs.IO, "issuing request", err)
		}

		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return errs.Wrap(errs.IO, "reading response body", err)
		}

		if resp.StatusCode >= 500 {
			return errs.New(errs.IO, fmt.Sprintf("server error: %d", resp.StatusCode))
		}

		if resp.StatusCode >= 400 {
			return backoff.Permanent(errs.New(errs.IO, fmt.Sprintf("client error: %d", resp.StatusCode)))
		}

		body = data
		size = int64(len(data))

		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = c.MaxElapsed

	if err := backoff.Retry(op, backoff.WithContext(policy, ctx)); err != nil {
		return nil, 0, err
	}

	return body, size, nil
}
