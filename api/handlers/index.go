package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/lexandro/davsearch-mcp/validation"
)

type RefreshRequest struct {
	Path string `json:"path" validate:"store_path"`
}

type RefreshResponse struct {
	Refreshed string `json:"refreshed"`
}

type IndexStatus struct {
	BasePath    string    `json:"base_path"`
	Files       int       `json:"files"`
	Folders     int       `json:"folders"`
	MaxDepth    int       `json:"max_depth"`
	Truncated   bool      `json:"truncated"`
	LastUpdated time.Time `json:"last_updated"`
}

type StatusResponse struct {
	Indexes            []IndexStatus `json:"indexes"`
	ContentEntries     int           `json:"content_entries"`
	ContentBytes       int64         `json:"content_bytes"`
	ContentHits        int64         `json:"content_hits"`
	ContentMisses      int64         `json:"content_misses"`
	ResultCacheEntries int           `json:"result_cache_entries"`
}

func SetupIndex(router *gin.Engine, logger *slog.Logger, engine *search.Engine, validator *validation.Validator) {
	router.POST("/index/refresh", handleRefresh(engine, logger, validator))
	router.GET("/index/status", handleStatus(engine))
}

// handleRefresh drops caches for one path, or all of them when the body is empty or has no path.
func handleRefresh(engine *search.Engine, logger *slog.Logger, validator *validation.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := RefreshRequest{}
		if c.Request.Body != nil && c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
				logger.Warn("could not extract expected params from refresh request", "error", err.Error())
				c.Abort()
				writeResponse(c, nil, http.StatusUnprocessableEntity, []string{"failed to extract request body parameters"})
				return
			}
		}
		if err := validator.Validate(request); err != nil {
			c.Abort()
			writeResponse(c, nil, http.StatusNotAcceptable, []string{err.Error()})
			return
		}

		if request.Path == "" {
			engine.ClearCaches()
			logger.Info("refresh", "scope", "all")
			writeResponse(c, RefreshResponse{Refreshed: "all"}, http.StatusOK, nil)
			return
		}

		storePath := store.CleanPath(request.Path)
		engine.Invalidate(storePath)
		logger.Info("refresh", "path", storePath)
		writeResponse(c, RefreshResponse{Refreshed: storePath}, http.StatusOK, nil)
	}
}

func handleStatus(engine *search.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := engine.Stats()
		status := StatusResponse{
			Indexes:            make([]IndexStatus, 0, len(stats.Indexes)),
			ContentEntries:     stats.Content.Entries,
			ContentBytes:       stats.Content.Bytes,
			ContentHits:        stats.Content.Hits,
			ContentMisses:      stats.Content.Misses,
			ResultCacheEntries: stats.ResultCacheEntries,
		}
		for _, entry := range stats.Indexes {
			status.Indexes = append(status.Indexes, IndexStatus{
				BasePath:    entry.BasePath,
				Files:       entry.FileCount,
				Folders:     entry.DirCount,
				MaxDepth:    entry.MaxDepth,
				Truncated:   entry.Truncated,
				LastUpdated: entry.LastUpdated,
			})
		}
		writeResponse(c, status, http.StatusOK, nil)
	}
}
