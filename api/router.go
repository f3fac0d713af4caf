package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/davsearch-mcp/api/handlers"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/validation"
)

// Dependencies are the components served over HTTP. MCP may be nil to leave /mcp unmounted.
type Dependencies struct {
	Engine    *search.Engine
	Validator *validation.Validator
	MCP       http.Handler
	Logger    *slog.Logger
}

// NewRouter builds the HTTP API: health, search, index maintenance and the streamable MCP endpoint.
func NewRouter(deps Dependencies) *gin.Engine {
	router := newRouter()
	router.Use(loggingMiddleware(deps.Logger))
	setupRoutes(router, deps)
	return router
}

func setupRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health", health())

	handlers.SetupSearch(router, deps.Logger, deps.Engine, deps.Validator)
	handlers.SetupIndex(router, deps.Logger, deps.Engine, deps.Validator)

	if deps.MCP != nil {
		router.Any("/mcp", gin.WrapH(deps.MCP))
	}
}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
