package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TobiSchelling/bizpulse/internal/automem"
	"github.com/TobiSchelling/bizpulse/internal/config"
	"github.com/TobiSchelling/bizpulse/internal/database"
	"github.com/TobiSchelling/bizpulse/internal/fetch"
	"github.com/TobiSchelling/bizpulse/internal/helpscout"
	"github.com/TobiSchelling/bizpulse/internal/inventory"
	"github.com/TobiSchelling/bizpulse/internal/metrics"
	"github.com/TobiSchelling/bizpulse/internal/pipeline"
	"github.com/TobiSchelling/bizpulse/internal/source"
	"github.com/TobiSchelling/bizpulse/internal/wordpress"
)

// wiring holds a configured pipeline and the resources it owns.
type wiring struct {
	pipeline *pipeline.Pipeline
	db       *database.DB
}

func (w *wiring) Close() {
	if w.db != nil {
		w.db.Close()
	}
}

// wire builds the pipeline described by cfg, registering its metrics with reg.
func wire(reg prometheus.Registerer) (*wiring, error) {
	w := &wiring{}

	var sink source.MemorySink
	switch cfg.Sink.Kind {
	case config.SinkAutoMem:
		sink = automem.New(cfg.Sink.AutoMemURL, nil)
	default:
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		w.db = db
		sink = db
	}

	var content source.ContentSource
	wp := cfg.Sources.WordPress
	switch wp.Kind {
	case config.ContentFeed:
		var fetcher *fetch.ContentFetcher
		if wp.FetchFullContent {
			fetcher = fetch.NewContentFetcher(0, logger)
		}
		content = wordpress.NewFeedSource(wp.FeedURL, fetcher, logger)
	default:
		content = wordpress.NewClient(wp.BaseURL, nil, logger)
	}

	w.pipeline = pipeline.New(
		pipeline.Deps{
			Tickets:   helpscout.New(cfg.Sources.HelpScout.BaseURL, nil, logger),
			Content:   content,
			Inventory: inventory.New(cfg.Sources.Inventory.Root),
			Sink:      sink,
		},
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.New(reg)),
		pipeline.WithDirectories(directories()),
		pipeline.WithInboxQuery(cfg.Sources.HelpScout.InboxQuery),
	)
	return w, nil
}

// directories returns the configured inventory locations, or the
// pipeline defaults when none are configured.
func directories() []pipeline.Directory {
	if len(cfg.Sources.Inventory.Directories) == 0 {
		return pipeline.DefaultDirectories
	}
	dirs := make([]pipeline.Directory, len(cfg.Sources.Inventory.Directories))
	for i, d := range cfg.Sources.Inventory.Directories {
		dirs[i] = pipeline.Directory{Name: d.Name, Path: d.Path}
	}
	return dirs
}

func helpScoutURL() string {
	if cfg.Sources.HelpScout.BaseURL == "" {
		return helpscout.DefaultBaseURL
	}
	return cfg.Sources.HelpScout.BaseURL
}

func openDB() (*database.DB, error) {
	db, err := database.Open(cfg.DBPath(), database.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("opening report store: %w", err)
	}
	return db, nil
}
