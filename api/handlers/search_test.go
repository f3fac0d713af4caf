package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var searchHandlerTestCases = []testCase{
	{
		name:           "NoQuery",
		queryParams:    url.Values{},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "BlankQuery",
		queryParams:    url.Values{"query": {"   "}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "QueryTooLong",
		queryParams:    url.Values{"query": {strings.Repeat("a", 1001)}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "NegativeLimit",
		queryParams:    url.Values{"query": {"budget"}, "limit": {"-1"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "UnknownScope",
		queryParams:    url.Values{"query": {"budget"}, "searchIn": {"everywhere"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "BadDate",
		queryParams:    url.Values{"query": {"budget"}, "modifiedAfter": {"yesterday"}},
		expectedStatus: http.StatusNotAcceptable,
	},
	{
		name:           "NonNumericLimit",
		queryParams:    url.Values{"query": {"budget"}, "limit": {"many"}},
		expectedStatus: http.StatusUnprocessableEntity,
	},
	{
		name:           "StopWordsOnly",
		queryParams:    url.Values{"query": {"the and of"}},
		expectedStatus: http.StatusOK,
	},
	{
		name:           "Valid",
		queryParams:    url.Values{"query": {"budget"}},
		expectedStatus: http.StatusOK,
	},
}

func Test_HandleSearch_Status(t *testing.T) {
	for _, tc := range searchHandlerTestCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := require.New(t)
			router, _ := setupTestServer(t, assert)

			w := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", "", tc.queryParams)
			assert.Equal(tc.expectedStatus, w.Code, w.Body.String())

			resp := decodeResponse(assert, w, nil)
			if tc.expectedStatus == http.StatusOK {
				assert.Empty(resp.Errors)
			} else {
				assert.NotEmpty(resp.Errors)
			}
		})
	}
}

func Test_HandleSearch_RanksFilenameAndContent(t *testing.T) {
	assert := require.New(t)
	router, _ := setupTestServer(t, assert)

	w := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", "", url.Values{"query": {"budget"}})
	assert.Equal(http.StatusOK, w.Code)

	var data SearchResponse
	decodeResponse(assert, w, &data)
	assert.Equal(2, data.Total)
	assert.False(data.Fallback)
	assert.NotEmpty(data.RequestID)

	paths := map[string]string{}
	for _, result := range data.Results {
		paths[result.Path] = result.MatchType
		assert.NotNil(result.Highlights)
		assert.True(result.Score > 0 && result.Score <= 100)
	}
	assert.Equal("filename", paths["/Documents/budget-2024.pdf"])
	assert.Equal("content", paths["/Documents/notes.txt"])
}

func Test_HandleSearch_FiltersAndLists(t *testing.T) {
	assert := require.New(t)
	router, _ := setupTestServer(t, assert)

	params := url.Values{
		"query":          {"budget receipt"},
		"searchIn":       {"filename,content"},
		"fileTypes":      {"md", "txt"},
		"includeContent": {"true"},
	}
	w := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", "", params)
	assert.Equal(http.StatusOK, w.Code, w.Body.String())

	var data SearchResponse
	decodeResponse(assert, w, &data)
	assert.Equal(2, data.Total)
	for _, result := range data.Results {
		assert.NotEqual("/Documents/budget-2024.pdf", result.Path)
		assert.NotEmpty(result.ContentPreview)
	}
}

func Test_HandleSearch_SecondCallIsCached(t *testing.T) {
	assert := require.New(t)
	router, _ := setupTestServer(t, assert)
	params := url.Values{"query": {"agenda"}}

	first := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", "", params)
	second := makeTestHTTPRequest(router, assert, http.MethodGet, "/search", "", params)

	var firstData, secondData SearchResponse
	decodeResponse(assert, first, &firstData)
	decodeResponse(assert, second, &secondData)
	assert.False(firstData.Cached)
	assert.True(secondData.Cached)
	assert.Equal(firstData.Total, secondData.Total)
}
