// Package harvest wires the catalog, valueset, plan, request, tracker,
// and history packages into one crawl: resolve a dataset's cached value
// set, walk its plan iterator, render a Request per combination, drop
// whatever History already records, and drive the result through a
// Downloader.
package harvest

import (
	"context"
	"iter"
	"log/slog"
	"time"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/downloader"
	"github.com/correlator-io/beaharvest/internal/bea/envelope"
	"github.com/correlator-io/beaharvest/internal/bea/errs"
	"github.com/correlator-io/beaharvest/internal/bea/history"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/bea/request"
	"github.com/correlator-io/beaharvest/internal/bea/tracker"
	"github.com/correlator-io/beaharvest/internal/bea/valueset"
	"github.com/correlator-io/beaharvest/internal/config"
)

// BuildRequests resolves dataset's cached value set and renders one
// Request per combination its plan iterator emits. MNE renders both the
// DI and AMNE kinds, since MneKind is not itself data-derived (spec.md
// §4.5 treats it as a caller-supplied selector, not a parameter value).
func BuildRequests(dataDir, baseURL, key string, dataset catalog.Dataset, opts plan.Options) ([]*request.Request, error) {
	switch dataset {
	case catalog.NIPA:
		set, err := valueset.BuildNipa(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.NipaIterator(set, opts)), nil

	case catalog.NIUnderlyingDetail:
		set, err := valueset.BuildNiUnderlyingDetail(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.NiUnderlyingDetailIterator(set, opts)), nil

	case catalog.FixedAssets:
		set, err := valueset.BuildFixedAssets(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.FixedAssetsIterator(set, opts)), nil

	case catalog.MNE:
		set, err := valueset.BuildMne(dataDir)
		if err != nil {
			return nil, err
		}

		reqs := render(baseURL, key, dataset, plan.MneIterator(set, plan.DI, opts))
		reqs = append(reqs, render(baseURL, key, dataset, plan.MneIterator(set, plan.AMNE, opts))...)

		return reqs, nil

	case catalog.ITA:
		set, err := valueset.BuildIta(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.ItaIterator(set, opts)), nil

	case catalog.GDPbyIndustry:
		set, err := valueset.BuildGdpByIndustry(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.GdpIterator(set, opts)), nil

	case catalog.UnderlyingGDPbyIndustry:
		set, err := valueset.BuildUnderlyingGdpByIndustry(dataDir)
		if err != nil {
			return nil, err
		}

		return render(baseURL, key, dataset, plan.UnderlyingGdpIterator(set, opts)), nil

	case catalog.IIP:
		set, err := valueset.BuildIip(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{
			catalog.Component: set.Component, catalog.Frequency: set.Frequency,
			catalog.TypeOfInvestment: set.TypeOfInvestment, catalog.Year: set.Year,
		}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	case catalog.Regional:
		set, err := valueset.BuildRegional(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{
			catalog.GeoFips: set.GeoFips, catalog.LineCode: set.LineCode,
			catalog.TableName: set.TableName, catalog.Year: set.Year,
		}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	case catalog.InputOutput:
		set, err := valueset.BuildInputOutput(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{catalog.TableID: set.TableID, catalog.Year: set.Year}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	case catalog.IntlServTrade:
		set, err := valueset.BuildIntlServTrade(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{
			catalog.Affiliation: set.Affiliation, catalog.AreaOrCountry: set.AreaOrCountry,
			catalog.TradeDirection: set.TradeDirection, catalog.TypeOfService: set.TypeOfService,
			catalog.Year: set.Year,
		}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	case catalog.IntlServSTA:
		set, err := valueset.BuildIntlServSta(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{
			catalog.AreaOrCountry: set.AreaOrCountry, catalog.Channel: set.Channel,
			catalog.Destination: set.Destination, catalog.Industry: set.Industry,
			catalog.Year: set.Year,
		}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	case catalog.APIDatasetMetadata:
		set, err := valueset.BuildApiMetadata(dataDir)
		if err != nil {
			return nil, err
		}

		legal := map[catalog.ParameterName][]string{catalog.DatasetName: datasetNames(set.Items)}

		return render(baseURL, key, dataset, plan.General(dataset.Names(), legal, opts)), nil

	default:
		return nil, errs.New(errs.VariantMissing, "no request builder for dataset: "+dataset.String())
	}
}

func render(baseURL, key string, dataset catalog.Dataset, seq iter.Seq[plan.Map]) []*request.Request {
	var out []*request.Request

	for m := range seq {
		out = append(out, request.New(baseURL, key, catalog.GetData, dataset, m))
	}

	return out
}

// datasetNames extracts the distinct DatasetName values an
// APIDatasetMetadata crawl already has cached, preserving first-seen
// order so repeat crawls enumerate in a stable sequence.
func datasetNames(items []envelope.ParameterValueTable) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))

	for _, t := range items {
		v, ok := t.Fields["DatasetName"].(string)
		if !ok || seen[v] {
			continue
		}

		seen[v] = true
		out = append(out, v)
	}

	return out
}

// Crawl builds dataset's full request set, drops every destination
// History already records, whatever its outcome (unless overwrite is
// set), and drives what remains through a Downloader.
func Crawl(
	ctx context.Context, cfg *config.Config, logger *slog.Logger,
	dataset catalog.Dataset, opts plan.Options, overwrite bool,
) error {
	reqs, err := BuildRequests(cfg.BeaData, cfg.BeaURL, cfg.APIKey, dataset, opts)
	if err != nil {
		return err
	}

	queue := request.NewQueue(cfg.BeaData, reqs)

	h, err := history.Load(cfg.BeaData, dataset, history.Download)
	if err != nil {
		return err
	}

	if err := queue.ApplySizeHints(h); err != nil {
		return err
	}

	if !overwrite {
		if err := queue.Exclude(h); err != nil {
			return err
		}
	}

	logger.Info("built crawl queue",
		slog.String("dataset", dataset.String()),
		slog.Int("requests", len(queue.Requests)),
	)

	d := &downloader.Downloader{
		Client:    request.NewClient(2 * time.Minute),
		Tracker:   tracker.New(cfg.CallCap, cfg.ErrorCap, cfg.SizeCap, 60*time.Second),
		DataDir:   cfg.BeaData,
		Log:       logger,
		Overwrite: overwrite,
	}

	return d.Run(ctx, queue.Requests, cfg.ChanCap)
}
