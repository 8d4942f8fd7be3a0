// Package main provides the BEA harvester CLI: a batch crawler that
// mirrors BEA REST API datasets to a local $BEA_DATA directory tree.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/correlator-io/beaharvest/internal/bea/catalog"
	"github.com/correlator-io/beaharvest/internal/bea/harvest"
	"github.com/correlator-io/beaharvest/internal/bea/plan"
	"github.com/correlator-io/beaharvest/internal/config"
)

// Version information.
const (
	version = "1.0.0-dev"
	name    = "beaharvest"
)

func main() {
	versionFlag := flag.Bool("version", false, "show version information")
	datasetFlag := flag.String("dataset", "", "BEA dataset to crawl (e.g. NIPA, ITA, MNE)")
	individualFlag := flag.String("individual", "", "comma-separated ParameterName list to enumerate individually instead of ALL")
	overwriteFlag := flag.Bool("overwrite", false, "re-download destinations already recorded in history")
	flag.Parse()

	if *versionFlag {
		log.Printf("%s v%s\n", name, version)
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting BEA harvester",
		slog.String("service", name),
		slog.String("version", version),
	)

	logger.Info("loaded configuration",
		slog.String("bea_url", cfg.BeaURL),
		slog.String("bea_data", cfg.BeaData),
		slog.Int("call_cap", cfg.CallCap),
		slog.Int("error_cap", cfg.ErrorCap),
		slog.Int64("size_cap", cfg.SizeCap),
		slog.Int("chan_cap", cfg.ChanCap),
		slog.String("log_level", cfg.LogLevel.String()),
	)

	if *datasetFlag == "" {
		logger.Error("missing required -dataset flag")
		os.Exit(1)
	}

	dataset, err := catalog.ParseDataset(*datasetFlag)
	if err != nil {
		logger.Error("unrecognized dataset", slog.String("dataset", *datasetFlag), slog.String("error", err.Error()))
		os.Exit(1)
	}

	opts := plan.Options{}

	if *individualFlag != "" {
		opts.Mode = make(map[catalog.ParameterName]plan.Mode)

		for _, n := range config.ParseCommaSeparatedList(*individualFlag) {
			opts.Mode[catalog.ParameterName(n)] = plan.Individual
		}
	}

	if err := harvest.Crawl(context.Background(), cfg, logger, dataset, opts, *overwriteFlag); err != nil {
		logger.Error("crawl failed",
			slog.String("dataset", dataset.String()),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	logger.Info("crawl complete", slog.String("dataset", dataset.String()))
}
