package main

import (
	"fmt"
	"strings"

	"github.com/abelbrown/watchfloor/internal/analyzer"
	"github.com/abelbrown/watchfloor/internal/brain"
	"github.com/abelbrown/watchfloor/internal/combine"
	"github.com/abelbrown/watchfloor/internal/config"
	"github.com/abelbrown/watchfloor/internal/dedup"
	"github.com/abelbrown/watchfloor/internal/entity"
	"github.com/abelbrown/watchfloor/internal/fetch"
	"github.com/abelbrown/watchfloor/internal/intel"
	"github.com/abelbrown/watchfloor/internal/logging"
	"github.com/abelbrown/watchfloor/internal/metrics"
	"github.com/abelbrown/watchfloor/internal/notify"
	"github.com/abelbrown/watchfloor/internal/pipeline"
	"github.com/abelbrown/watchfloor/internal/store"
)

// loadConfig reads the configuration and starts logging. --log-level
// wins over the file and environment.
func loadConfig(g *globalFlags) (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if err := logging.Init(logging.Options{Level: cfg.Log.Level, Path: cfg.Log.File, Dir: cfg.Log.Dir}); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newAnalyzer builds the engine from config. The detector only looks
// backwards because callers pass the batch itself as part of the window.
func newAnalyzer(e config.EngineConfig) (*analyzer.Analyzer, error) {
	comb, err := combine.New(
		combine.WithPrimaryWeights(e.PrimaryWeights),
		combine.WithSecondaryWeights(e.SecondaryWeights),
	)
	if err != nil {
		return nil, fmt.Errorf("engine weights: %w", err)
	}
	x, err := entity.New(entity.WithClassCap(e.EntityCap))
	if err != nil {
		return nil, fmt.Errorf("entity lexicons: %w", err)
	}
	return analyzer.New(
		analyzer.WithCombiner(comb),
		analyzer.WithExtractor(x),
		analyzer.WithDetector(dedup.New(
			dedup.WithThreshold(e.DuplicateThreshold),
			dedup.WithWindow(e.DuplicateWindow),
			dedup.WithPriorOnly(),
		)),
		analyzer.WithConcurrency(e.Concurrency),
		analyzer.WithTimeout(e.ArticleTimeout),
	), nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return st, nil
}

// newPipeline wires every configured collaborator. The returned cleanup
// closes the publisher; the caller owns the store.
func newPipeline(cfg config.Config, st *store.Store, m *metrics.Metrics) (*pipeline.Pipeline, func(), error) {
	an, err := newAnalyzer(cfg.Engine)
	if err != nil {
		return nil, nil, err
	}
	opts := []pipeline.Option{
		pipeline.WithMetrics(m),
		pipeline.WithWindow(cfg.Engine.DuplicateWindow),
		pipeline.WithWindowLimit(cfg.Engine.WindowLimit),
		pipeline.WithFetchTimeout(cfg.Fetch.Timeout),
		pipeline.WithFetchConcurrency(cfg.Fetch.Concurrency),
	}
	cleanup := func() {}

	if cfg.Hints.Enabled {
		p := brain.NewOllamaProvider(cfg.Hints.Endpoint, cfg.Hints.Model, cfg.Hints.Timeout, cfg.Hints.RequestsPerSecond)
		opts = append(opts, pipeline.WithHinter(brain.NewHinter(p)))
		logging.Info("hints enabled", "endpoint", cfg.Hints.Endpoint, "model", cfg.Hints.Model)
	}
	if cfg.Notify.URL != "" {
		min := intel.Level(strings.ToUpper(cfg.Notify.MinPriority))
		pub, err := notify.Connect(cfg.Notify.URL, cfg.Notify.Subject, min)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, pipeline.WithPublisher(pub))
		cleanup = func() {
			if err := pub.Close(); err != nil {
				logging.Warn("closing publisher", "error", err)
			}
		}
	}

	f := fetch.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MinInterval)
	return pipeline.New(st, f, an, cfg.Feeds, opts...), cleanup, nil
}
