package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lexandro/davsearch-mcp/config"
	"github.com/lexandro/davsearch-mcp/extract"
	"github.com/lexandro/davsearch-mcp/ignore"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/logger"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/server"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/lexandro/davsearch-mcp/tools"
	"github.com/lexandro/davsearch-mcp/validation"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	startTime time.Time

	store     store.Store
	local     *store.LocalStore // Set for the local backend only
	backend   string            // Human-readable store description
	matcher   *ignore.Matcher
	indexer   *index.Indexer
	extractor *extract.Extractor
	engine    *search.Engine
	validator *validation.Validator
}

func loadApp() (*app, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, err
	}
	log, closer := logger.New(cfg.LogLevel, cfg.LogFile)

	a, err := newApp(cfg, log)
	if err != nil {
		closer.Close()
		return nil, err
	}
	a.logCloser = closer
	return a, nil
}

// newApp wires store, indexer, extractor and engine from cfg.
func newApp(cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{
		cfg:       cfg,
		logger:    log,
		startTime: time.Now(),
	}

	switch cfg.Backend {
	case config.BackendLocal:
		local, err := store.NewLocalStore(cfg.Local.Root)
		if err != nil {
			return nil, fmt.Errorf("opening local store: %w", err)
		}
		a.store, a.local = local, local
		a.backend = "local " + local.Root
	default:
		client, err := store.NewWebDAVClient(store.WebDAVOptions{
			URL:               cfg.WebDAV.URL,
			Username:          cfg.WebDAV.Username,
			Password:          cfg.WebDAV.Password,
			Timeout:           cfg.WebDAV.Timeout,
			RequestsPerSecond: cfg.WebDAV.RequestsPerSecond,
			Burst:             cfg.WebDAV.Burst,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("creating webdav client: %w", err)
		}
		a.store = client
		a.backend = "webdav " + cfg.WebDAV.URL
	}

	matcher, err := ignore.NewMatcher(ignore.MatcherOptions{Rules: cfg.Indexer.Exclude})
	if err != nil {
		return nil, fmt.Errorf("compiling exclude rules: %w", err)
	}
	a.matcher = matcher

	a.indexer = index.NewIndexer(a.store, index.Options{
		MaxDepth:       cfg.Indexer.MaxDepth,
		MaxIndexSize:   cfg.Indexer.MaxIndexSize,
		Concurrency:    cfg.Indexer.Concurrency,
		CacheTTL:       cfg.Indexer.CacheTTL,
		ListingTimeout: cfg.Indexer.ListingTimeout,
		Matcher:        matcher,
	}, log)
	a.extractor = extract.NewExtractor(a.store, extract.Options{
		MaxFileSize:     cfg.Extractor.MaxFileSize,
		CacheTTL:        cfg.Extractor.CacheTTL,
		CacheMaxBytes:   cfg.Extractor.CacheMaxBytes,
		MaxContentChars: cfg.Extractor.MaxContentChars,
	}, log)
	a.engine = search.NewEngine(a.indexer, a.extractor, search.Config{
		DefaultLimit:     cfg.Search.DefaultLimit,
		FallbackLimit:    cfg.Search.FallbackLimit,
		ResultCacheTTL:   cfg.Search.ResultCacheTTL,
		ContentBatchSize: cfg.Search.ContentBatchSize,
	}, log)

	a.validator, err = validation.New(log)
	if err != nil {
		return nil, fmt.Errorf("creating validator: %w", err)
	}

	log.Info("davsearch-mcp configured",
		"store", a.backend,
		"maxDepth", cfg.Indexer.MaxDepth,
		"maxIndexSize", cfg.Indexer.MaxIndexSize,
		"excludeRules", matcher.RuleCount(),
	)
	return a, nil
}

// mcpServer registers every tool against the app's components.
func (a *app) mcpServer() *mcp.Server {
	return server.Setup(
		&tools.SearchHandler{Engine: a.engine, Validator: a.validator, Logger: a.logger},
		&tools.FilesHandler{Indexer: a.indexer, Logger: a.logger},
		&tools.ReadHandler{Store: a.store, Extractor: a.extractor, Logger: a.logger},
		&tools.StatusHandler{Engine: a.engine, StartTime: a.startTime, Backend: a.backend, Logger: a.logger},
		&tools.RefreshHandler{Engine: a.engine, Logger: a.logger},
	)
}

func (a *app) Close() error {
	if a.logCloser == nil {
		return nil
	}
	return a.logCloser.Close()
}
