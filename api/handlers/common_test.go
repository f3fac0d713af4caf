// Common test helpers
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexandro/davsearch-mcp/extract"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/search"
	"github.com/lexandro/davsearch-mcp/store"
	"github.com/lexandro/davsearch-mcp/validation"
	"github.com/stretchr/testify/require"
)

var testModified = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testCase struct {
	name           string
	queryParams    url.Values
	requestBody    string
	expectedStatus int
}

// testResponse mirrors response with the data left raw for per-endpoint decoding.
type testResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []string        `json:"errors"`
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestServer(t *testing.T, assert *require.Assertions) (*gin.Engine, *search.Engine) {
	t.Helper()
	m := store.NewMemoryStore()
	m.AddFile("/Documents/notes.txt", []byte("budget review\nagenda"), "text/plain", testModified)
	m.AddSizedFile("/Documents/budget-2024.pdf", 500*1024, "application/pdf", testModified)
	m.AddFile("/Documents/Taxes/receipt.md", []byte("# Receipt\npaid"), "text/markdown", testModified)

	testLogger := newTestLogger()
	indexer := index.NewIndexer(m, index.Options{}, testLogger)
	extractor := extract.NewExtractor(m, extract.Options{}, testLogger)
	engine := search.NewEngine(indexer, extractor, search.Config{}, testLogger)
	validator, err := validation.New(testLogger)
	assert.NoError(err, "could not create validator")

	gin.SetMode(gin.TestMode)
	router := gin.New()
	SetupSearch(router, testLogger, engine, validator)
	SetupIndex(router, testLogger, engine, validator)
	return router, engine
}

func makeTestHTTPRequest(router *gin.Engine, assert *require.Assertions, method string, endpoint string, body string, queryParams url.Values) *httptest.ResponseRecorder {
	if len(queryParams) > 0 {
		endpoint = endpoint + "?" + queryParams.Encode()
	}

	var req *http.Request
	var err error
	if body != "" {
		req, err = http.NewRequest(method, endpoint, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, err = http.NewRequest(method, endpoint, nil)
	}
	assert.NoError(err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(assert *require.Assertions, w *httptest.ResponseRecorder, data any) testResponse {
	var resp testResponse
	assert.NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if data != nil && len(resp.Data) > 0 && string(resp.Data) != "null" {
		assert.NoError(json.Unmarshal(resp.Data, data))
	}
	return resp
}
