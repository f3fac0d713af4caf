package store

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
)

// multistatus mirrors the subset of a DAV: multi-status document the indexer needs.
type multistatus struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []davResponse `xml:"DAV: response"`
}

type davResponse struct {
	Href      string        `xml:"DAV: href"`
	Propstats []davPropstat `xml:"DAV: propstat"`
}

type davPropstat struct {
	Prop   davProp `xml:"DAV: prop"`
	Status string  `xml:"DAV: status"`
}

type davProp struct {
	DisplayName   string          `xml:"DAV: displayname"`
	ContentLength string          `xml:"DAV: getcontentlength"`
	LastModified  string          `xml:"DAV: getlastmodified"`
	ContentType   string          `xml:"DAV: getcontenttype"`
	ResourceType  davResourceType `xml:"DAV: resourcetype"`
}

type davResourceType struct {
	Collection *struct{} `xml:"DAV: collection"`
}

// ParseMultistatus normalizes a PROPFIND multi-status body into entries.
// endpointPath is the URL path of the WebDAV root (e.g. /remote.php/dav/files/alice);
// hrefs are made relative to it. Entries that cannot be normalized are skipped
// with a warning instead of failing the whole listing.
func ParseMultistatus(r io.Reader, endpointPath string, logger *slog.Logger) ([]Entry, error) {
	var doc multistatus
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding multistatus: %w", err)
	}

	endpointPath = strings.TrimSuffix(endpointPath, "/")
	entries := make([]Entry, 0, len(doc.Responses))
	for _, response := range doc.Responses {
		entry, err := normalizeResponse(response, endpointPath)
		if err != nil {
			logger.Warn("skipping malformed listing entry", "href", response.Href, "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func normalizeResponse(response davResponse, endpointPath string) (Entry, error) {
	href := strings.TrimSpace(response.Href)
	if href == "" {
		return Entry{}, fmt.Errorf("empty href")
	}

	// Some servers return absolute URLs instead of paths
	if u, err := url.Parse(href); err == nil && u.IsAbs() {
		href = u.EscapedPath()
	}

	decoded, err := url.PathUnescape(href)
	if err != nil {
		return Entry{}, fmt.Errorf("decoding href: %w", err)
	}

	if endpointPath != "" && decoded != endpointPath && !strings.HasPrefix(decoded, endpointPath+"/") {
		return Entry{}, fmt.Errorf("href outside endpoint %s", endpointPath)
	}
	storePath := CleanPath(strings.TrimPrefix(decoded, endpointPath))

	prop, ok := successfulProp(response.Propstats)
	if !ok {
		return Entry{}, fmt.Errorf("no successful propstat")
	}

	entry := Entry{
		Path:        storePath,
		Name:        path.Base(storePath),
		ContentType: strings.TrimSpace(prop.ContentType),
		IsDirectory: prop.ResourceType.Collection != nil,
	}
	if storePath == "/" {
		entry.Name = ""
	}

	if length := strings.TrimSpace(prop.ContentLength); length != "" {
		size, err := strconv.ParseInt(length, 10, 64)
		if err != nil || size < 0 {
			return Entry{}, fmt.Errorf("invalid content length %q", length)
		}
		entry.Size = size
	}

	if modified := strings.TrimSpace(prop.LastModified); modified != "" {
		if t, err := http.ParseTime(modified); err == nil {
			entry.LastModified = t.UTC()
		}
	}

	return entry, nil
}

// successfulProp merges all 2xx propstats. Servers report missing properties in a separate 404 propstat.
func successfulProp(propstats []davPropstat) (davProp, bool) {
	var merged davProp
	found := false
	for _, ps := range propstats {
		if !isSuccessStatus(ps.Status) {
			continue
		}
		found = true
		if ps.Prop.DisplayName != "" {
			merged.DisplayName = ps.Prop.DisplayName
		}
		if ps.Prop.ContentLength != "" {
			merged.ContentLength = ps.Prop.ContentLength
		}
		if ps.Prop.LastModified != "" {
			merged.LastModified = ps.Prop.LastModified
		}
		if ps.Prop.ContentType != "" {
			merged.ContentType = ps.Prop.ContentType
		}
		if ps.Prop.ResourceType.Collection != nil {
			merged.ResourceType.Collection = ps.Prop.ResourceType.Collection
		}
	}
	return merged, found
}

// isSuccessStatus parses a status line such as "HTTP/1.1 200 OK".
// A missing status is treated as success.
func isSuccessStatus(status string) bool {
	fields := strings.Fields(status)
	if len(fields) < 2 {
		return true
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return false
	}
	return code >= 200 && code < 300
}
