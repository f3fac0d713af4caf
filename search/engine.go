// Package search runs scoped, ranked queries over store snapshots.
package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lexandro/davsearch-mcp/extract"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/sourcegraph/conc/pool"
)

// Config tunes an Engine. Zero values take the defaults noted per field.
type Config struct {
	DefaultLimit     int           // 50
	FallbackLimit    int           // 20
	ResultCacheTTL   time.Duration // 1m
	ContentBatchSize int           // Concurrent content extractions (10)
	PreviewLines     int           // 3
}

func (c *Config) applyDefaults() {
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = 50
	}
	if c.FallbackLimit <= 0 {
		c.FallbackLimit = 20
	}
	if c.ResultCacheTTL <= 0 {
		c.ResultCacheTTL = time.Minute
	}
	if c.ContentBatchSize <= 0 {
		c.ContentBatchSize = 10
	}
	if c.PreviewLines <= 0 {
		c.PreviewLines = 3
	}
}

// Stats is a snapshot of the engine's caches.
type Stats struct {
	ResultCacheEntries int
	Indexes            []index.CacheEntry
	Content            extract.CacheStats
}

// Engine owns the index, content and result caches for one server lifetime.
// Safe for concurrent use.
type Engine struct {
	indexer   *index.Indexer
	extractor *extract.Extractor
	config    Config
	logger    *slog.Logger
	results   *resultCache
	now       func() time.Time
}

func NewEngine(indexer *index.Indexer, extractor *extract.Extractor, config Config, logger *slog.Logger) *Engine {
	config.applyDefaults()
	return &Engine{
		indexer:   indexer,
		extractor: extractor,
		config:    config,
		logger:    logger,
		results:   newResultCache(config.ResultCacheTTL),
		now:       time.Now,
	}
}

// Search returns the ranked results for opts. See Execute.
func (e *Engine) Search(ctx context.Context, opts Options) ([]Result, error) {
	response, err := e.Execute(ctx, opts)
	if err != nil {
		return nil, err
	}
	return response.Results, nil
}

// Execute runs one query. A query without usable terms returns an empty response
// without touching the store. When the index walk times out or the base path cannot
// be walked, a non-recursive fallback answers instead. The only error is *SearchError,
// returned when the query cannot be served at all (e.g. the caller gave up).
func (e *Engine) Execute(ctx context.Context, opts Options) (*Response, error) {
	start := time.Now()
	response := &Response{RequestID: uuid.NewString()}
	logger := e.logger.With("requestID", response.RequestID)

	n := opts.normalize(e.config.DefaultLimit)
	terms := ParseQuery(n.Query)
	response.Terms = terms
	if len(terms) == 0 {
		response.Results = []Result{}
		return response, nil
	}

	key := n.cacheKey()
	if cached, ok := e.results.get(key); ok {
		response.Results = cached
		response.Cached = true
		response.Elapsed = time.Since(start)
		logger.Debug("result cache hit", "query", n.Query, "results", len(cached))
		return response, nil
	}

	fileIndex, err := e.indexer.GetIndex(ctx, index.Request{
		BasePath: n.BasePath,
		Quick:    n.quick,
		MaxDepth: n.MaxDepth,
	})
	if err != nil {
		if ctx.Err() == nil && (errors.Is(err, index.ErrIndexTimeout) || errors.Is(err, index.ErrIndexFailed)) {
			logger.Warn("index unavailable, falling back to shallow search", "basePath", n.BasePath, "error", err)
			return e.fallback(ctx, n, terms, response, start, logger)
		}
		logger.Error("search failed", "query", n.Query, "basePath", n.BasePath, "error", err)
		return nil, newSearchError(n, err)
	}

	candidates := filterCandidates(fileIndex.Files, n)
	results := e.match(ctx, n, terms, candidates)
	if err := ctx.Err(); err != nil {
		return nil, newSearchError(n, err)
	}
	results = e.rank(n, results, n.Limit)

	if n.IncludeContent {
		e.attachPreviews(ctx, results)
	}

	e.results.put(key, results)
	response.Results = results
	response.Elapsed = time.Since(start)
	logger.Info("search",
		"query", n.Query,
		"basePath", n.BasePath,
		"scopes", n.scopes,
		"candidates", len(candidates),
		"results", len(results),
		"elapsed", response.Elapsed,
	)
	return response, nil
}

// fallback lists only the base directory and scores it by filename and metadata.
// A failed listing yields no results; only the caller's own cancellation is an error.
func (e *Engine) fallback(ctx context.Context, n normalized, terms []string, response *Response, start time.Time, logger *slog.Logger) (*Response, error) {
	response.Fallback = true
	response.Results = []Result{}

	files, err := e.indexer.ListShallow(ctx, n.BasePath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, newSearchError(n, ctx.Err())
		}
		logger.Warn("fallback listing failed", "basePath", n.BasePath, "error", err)
		response.Elapsed = time.Since(start)
		return response, nil
	}

	shallow := n
	shallow.scopes = nil
	for _, scope := range n.scopes {
		if scope != ScopeContent {
			shallow.scopes = append(shallow.scopes, scope)
		}
	}
	if len(shallow.scopes) == 0 {
		shallow.scopes = []Scope{ScopeFilename, ScopeMetadata}
	}

	candidates := filterCandidates(files, shallow)
	results := e.match(ctx, shallow, terms, candidates)
	response.Results = e.rank(shallow, results, min(n.Limit, e.config.FallbackLimit))
	response.Elapsed = time.Since(start)
	logger.Info("fallback search",
		"query", n.Query,
		"basePath", n.BasePath,
		"candidates", len(candidates),
		"results", len(response.Results),
		"elapsed", response.Elapsed,
	)
	return response, nil
}

// match runs every requested scope over the candidates.
func (e *Engine) match(ctx context.Context, n normalized, terms []string, candidates []*index.FileMetadata) []Result {
	var results []Result
	if n.wants(ScopeFilename) {
		for _, file := range candidates {
			score, highlights := matchFilename(file, n.Query, terms)
			if score > 0 {
				results = append(results, Result{
					File:       file,
					MatchType:  ScopeFilename,
					Score:      score,
					Highlights: highlights,
					Context:    file.Path,
				})
			}
		}
	}
	if n.wants(ScopeContent) {
		results = append(results, e.matchContent(ctx, terms, candidates)...)
	}
	if n.wants(ScopeMetadata) {
		for _, file := range candidates {
			score, highlights, excerpt := matchMetadata(extract.MetadataText(file), terms)
			if score > 0 {
				results = append(results, Result{
					File:       file,
					MatchType:  ScopeMetadata,
					Score:      score,
					Highlights: highlights,
					Context:    excerpt,
				})
			}
		}
	}
	return results
}

// matchContent extracts and scores extractable candidates, ContentBatchSize at a time.
func (e *Engine) matchContent(ctx context.Context, terms []string, candidates []*index.FileMetadata) []Result {
	p := pool.NewWithResults[*Result]().WithMaxGoroutines(e.config.ContentBatchSize)
	for _, file := range candidates {
		if !e.extractor.CanExtract(file) {
			continue
		}
		p.Go(func() *Result {
			if ctx.Err() != nil {
				return nil
			}
			score, highlights, excerpt := matchText(e.extractor.ExtractContent(ctx, file), terms)
			if score <= 0 {
				return nil
			}
			return &Result{
				File:       file,
				MatchType:  ScopeContent,
				Score:      score,
				Highlights: highlights,
				Context:    excerpt,
			}
		})
	}

	var results []Result
	for _, result := range p.Wait() {
		if result != nil {
			results = append(results, *result)
		}
	}
	return results
}

// rank merges, post-filters, applies bonuses, sorts and truncates.
func (e *Engine) rank(n normalized, results []Result, limit int) []Result {
	results = mergeResults(results)

	if n.CaseSensitive {
		raw := rawTerms(n.Query)
		kept := results[:0]
		for _, result := range results {
			if keepCaseSensitive(result.Highlights, raw) {
				kept = append(kept, result)
			}
		}
		results = kept
	}

	now := e.now()
	for i := range results {
		results[i].Score = applyBonuses(results[i].Score, results[i].File, now)
	}
	sortResults(results)

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// attachPreviews adds the first lines of content to filename and content matches.
// Files without readable content keep an empty preview.
func (e *Engine) attachPreviews(ctx context.Context, results []Result) {
	p := pool.New().WithMaxGoroutines(e.config.ContentBatchSize)
	for i := range results {
		if results[i].MatchType == ScopeMetadata || !e.extractor.CanExtract(results[i].File) {
			continue
		}
		p.Go(func() {
			results[i].ContentPreview = e.extractor.ContentPreview(ctx, results[i].File, e.config.PreviewLines)
		})
	}
	p.Wait()
}

// Invalidate drops cached state for a changed path: the index snapshot that covers it,
// cached content below it and every cached result set.
func (e *Engine) Invalidate(storePath string) {
	storePath = store.CleanPath(storePath)
	basePath := e.indexer.UpdateIndex(storePath)
	dropped := e.extractor.Invalidate(storePath)
	e.results.clear()
	e.logger.Debug("invalidated", "path", storePath, "indexBasePath", basePath, "contentEntries", dropped)
}

// ClearCaches empties every cache the engine owns.
func (e *Engine) ClearCaches() {
	e.indexer.Clear()
	e.extractor.Clear()
	e.results.clear()
	e.logger.Info("caches cleared")
}

func (e *Engine) Stats() Stats {
	return Stats{
		ResultCacheEntries: e.results.len(),
		Indexes:            e.indexer.Stats(),
		Content:            e.extractor.Stats(),
	}
}

