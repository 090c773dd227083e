package audit

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dtnitsch/geo-audit/models"
	pipeline "github.com/dtnitsch/geo-audit/pkg/audit"
	"github.com/dtnitsch/geo-audit/pkg/caching"
	"github.com/dtnitsch/geo-audit/pkg/db"
	"github.com/dtnitsch/geo-audit/pkg/extractor"
	"github.com/dtnitsch/geo-audit/pkg/fetcher"
	"github.com/dtnitsch/geo-audit/pkg/llm"
	"github.com/dtnitsch/geo-audit/pkg/signals"
)

// Components is everything a command needs to run audits.
type Components struct {
	Config    models.AuditConfig
	Extractor *extractor.Extractor
	Pipeline  *pipeline.Pipeline
	database  *db.DB
}

// Close releases the cache database, if one was opened.
func (c *Components) Close() error {
	if c.database != nil {
		return c.database.Close()
	}
	return nil
}

// Build wires fetcher, extractor, dispatcher and cache from cfg.
func Build(cfg models.AuditConfig, includeSnippets bool, logger *slog.Logger) (*Components, error) {
	cfg.Normalize()

	f := fetcher.NewFetcher(cfg.UserAgent, cfg.FetchTimeout)
	parser := &signals.Parser{SnippetChars: cfg.SnippetChars, Enrich: true}
	ex := extractor.New(f, parser, cfg.MaxPages, logger)

	dispatcher := llm.NewDispatcher(llm.Options{
		BaseURL:         cfg.BaseURL,
		MaxTokens:       cfg.MaxTokens,
		Temperature:     &cfg.Temperature,
		IncludeSnippets: includeSnippets,
		HTTPClient:      &http.Client{Timeout: 2 * time.Minute},
		Logger:          logger,
	})

	comps := &Components{Config: cfg, Extractor: ex}

	var store caching.Store = caching.NewMemoryStore()
	if cfg.CacheDB != "" && cfg.CacheTTL > 0 {
		database, err := db.Open(cfg.CacheDB)
		if err != nil {
			return nil, fmt.Errorf("failed to open cache database: %w", err)
		}
		sqlStore, err := caching.NewSQLStore(database)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		if n, err := sqlStore.Purge(time.Now()); err != nil {
			logger.Warn("Failed to purge expired cache entries", "error", err)
		} else if n > 0 {
			logger.Debug("Purged expired cache entries", "count", n)
		}
		logger.Info("Audit cache opened", "dsn", database.Path(), "ttl", cfg.CacheTTL.String())
		store = sqlStore
		comps.database = database
	}

	comps.Pipeline = pipeline.New(pipeline.Options{
		Extractor:        ex,
		Dispatcher:       dispatcher,
		Cache:            caching.New(store, cfg.CacheTTL),
		DefaultModel:     cfg.Model,
		Namespace:        cfg.BaseURL,
		KeyByCredentials: cfg.CachePerToken,
		Logger:           logger,
	})
	return comps, nil
}
