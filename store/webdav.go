package store

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const propfindBody = `<?xml version="1.0" encoding="utf-8"?>
<d:propfind xmlns:d="DAV:">
  <d:prop>
    <d:displayname/>
    <d:getcontentlength/>
    <d:getlastmodified/>
    <d:getcontenttype/>
    <d:resourcetype/>
  </d:prop>
</d:propfind>`

// WebDAVOptions configures a WebDAVClient.
type WebDAVOptions struct {
	URL               string // Endpoint root, e.g. https://cloud.example.com/remote.php/dav/files/alice
	Username          string
	Password          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// WebDAVClient implements Store over PROPFIND and GET requests.
// Every request waits on a token bucket so index walks cannot flood the server.
type WebDAVClient struct {
	baseURL    *url.URL
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewWebDAVClient validates the endpoint and builds a client.
func NewWebDAVClient(options WebDAVOptions, logger *slog.Logger) (*WebDAVClient, error) {
	if options.URL == "" {
		return nil, fmt.Errorf("webdav url is required")
	}
	baseURL, err := url.Parse(strings.TrimSuffix(options.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing webdav url: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported webdav url scheme %q", baseURL.Scheme)
	}

	if options.Timeout <= 0 {
		options.Timeout = 30 * time.Second
	}
	if options.RequestsPerSecond <= 0 {
		options.RequestsPerSecond = 10
	}
	if options.Burst <= 0 {
		options.Burst = 20
	}

	return &WebDAVClient{
		baseURL:    baseURL,
		username:   options.Username,
		password:   options.Password,
		httpClient: &http.Client{Timeout: options.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(options.RequestsPerSecond), options.Burst),
		logger:     logger,
	}, nil
}

// ListDirectory issues a Depth: 1 PROPFIND and drops the self entry.
func (c *WebDAVClient) ListDirectory(ctx context.Context, dirPath string) ([]Entry, error) {
	dirPath = CleanPath(dirPath)
	entries, err := c.propfind(ctx, dirPath, "1")
	if err != nil {
		return nil, err
	}

	children := make([]Entry, 0, len(entries))
	for _, entry := range entries {
		if entry.Path == dirPath {
			continue
		}
		children = append(children, entry)
	}
	return children, nil
}

// Stat issues a Depth: 0 PROPFIND.
func (c *WebDAVClient) Stat(ctx context.Context, filePath string) (*Entry, error) {
	filePath = CleanPath(filePath)
	entries, err := c.propfind(ctx, filePath, "0")
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		if entry.Path == filePath {
			return &entry, nil
		}
	}
	return nil, fmt.Errorf("stat %s: %w", filePath, ErrNotFound)
}

// ReadFile downloads the whole file.
func (c *WebDAVClient) ReadFile(ctx context.Context, filePath string) ([]byte, error) {
	return c.get(ctx, filePath, -1)
}

// ReadFileLimited downloads at most limit bytes using a Range request.
// Servers that ignore Range are cut off client-side.
func (c *WebDAVClient) ReadFileLimited(ctx context.Context, filePath string, limit int64) ([]byte, error) {
	if limit <= 0 {
		return []byte{}, nil
	}
	return c.get(ctx, filePath, limit)
}

func (c *WebDAVClient) propfind(ctx context.Context, storePath string, depth string) ([]Entry, error) {
	req, err := c.newRequest(ctx, "PROPFIND", storePath, bytes.NewBufferString(propfindBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", depth)
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("propfind %s: %w", storePath, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("propfind %s: %w", storePath, ErrNotFound)
	case resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("propfind %s: unexpected status %s", storePath, resp.Status)
	}

	entries, err := ParseMultistatus(resp.Body, c.baseURL.Path, c.logger)
	if err != nil {
		return nil, fmt.Errorf("propfind %s: %w", storePath, err)
	}
	return entries, nil
}

func (c *WebDAVClient) get(ctx context.Context, filePath string, limit int64) ([]byte, error) {
	filePath = CleanPath(filePath)
	req, err := c.newRequest(ctx, http.MethodGet, filePath, nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", limit-1))
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", filePath, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("get %s: %w", filePath, ErrNotFound)
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		// Empty file
		return []byte{}, nil
	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent:
		return nil, fmt.Errorf("get %s: unexpected status %s", filePath, resp.Status)
	}

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", filePath, err)
	}
	return data, nil
}

func (c *WebDAVClient) newRequest(ctx context.Context, method string, storePath string, body io.Reader) (*http.Request, error) {
	target := *c.baseURL
	target.Path = c.baseURL.Path + CleanPath(storePath)
	if strings.HasSuffix(target.Path, "/") && len(target.Path) > 1 {
		target.Path = strings.TrimSuffix(target.Path, "/")
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("building %s request for %s: %w", method, storePath, err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	return req, nil
}

func (c *WebDAVClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("webdav request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return resp, nil
}
