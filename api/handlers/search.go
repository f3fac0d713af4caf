package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/tools"
	"github.com/lexandro/davsearch-mcp/validation"
)

// SearchResult is the JSON view of one ranked match.
type SearchResult struct {
	Path           string    `json:"path"`
	Name           string    `json:"name"`
	Size           int64     `json:"size"`
	LastModified   time.Time `json:"last_modified"`
	MimeType       string    `json:"mime_type,omitempty"`
	IsDirectory    bool      `json:"is_directory"`
	MatchType      string    `json:"match_type"`
	Score          float64   `json:"score"`
	Highlights     []string  `json:"highlights"`
	Context        string    `json:"context,omitempty"`
	ContentPreview string    `json:"content_preview,omitempty"`
}

type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	Total     int            `json:"total"`
	Fallback  bool           `json:"fallback"`
	Cached    bool           `json:"cached"`
	ElapsedMS int64          `json:"elapsed_ms"`
	RequestID string         `json:"request_id"`
}

func SetupSearch(router *gin.Engine, logger *slog.Logger, engine *search.Engine, validator *validation.Validator) {
	router.GET("/search", handleSearch(engine, logger, validator))
}

func handleSearch(engine *search.Engine, logger *slog.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := tools.SearchArgs{}
		if err := c.ShouldBindQuery(&request); err != nil {
			logger.Warn("could not extract expected params from search request", "error", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract query parameters"})
			return
		}

		if err := validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}
		opts, err := request.Options()
		if err != nil {
			logger.Warn("could not convert search request", "error", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		result, err := engine.Execute(c.Request.Context(), opts)
		if err != nil {
			logger.Error("search failed", "query", opts.Query, "error", err.Error())
			c.Abort()
			writeResponse(c, nil, http.StatusServiceUnavailable, searchErrorMessages(err))
			return
		}

		writeResponse(c, newSearchResponse(result), http.StatusOK, nil)
	}
}

func newSearchResponse(result *search.Response) SearchResponse {
	out := SearchResponse{
		Results:   make([]SearchResult, 0, len(result.Results)),
		Total:     len(result.Results),
		Fallback:  result.Fallback,
		Cached:    result.Cached,
		ElapsedMS: result.Elapsed.Milliseconds(),
		RequestID: result.RequestID,
	}
	for _, r := range result.Results {
		highlights := r.Highlights
		if highlights == nil {
			highlights = []string{}
		}
		out.Results = append(out.Results, SearchResult{
			Path:           r.File.Path,
			Name:           r.File.Name,
			Size:           r.File.Size,
			LastModified:   r.File.LastModified,
			MimeType:       r.File.MimeType,
			IsDirectory:    r.File.IsDirectory,
			MatchType:      string(r.MatchType),
			Score:          r.Score,
			Highlights:     highlights,
			Context:        r.Context,
			ContentPreview: r.ContentPreview,
		})
	}
	return out
}

// searchErrorMessages puts the failure first and each suggestion after it.
func searchErrorMessages(err error) []string {
	var searchErr *search.SearchError
	if !errors.As(err, &searchErr) {
		return []string{err.Error()}
	}
	return append([]string{searchErr.Error()}, searchErr.Suggestions...)
}
