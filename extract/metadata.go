package extract

import (
	"strconv"
	"strings"

	"github.com/lexandro/davsearch-mcp/filetype"
	"github.com/lexandro/davsearch-mcp/index"
)

// SizeBucket names a coarse size class: empty, tiny, small, medium, large, very large or huge.
func SizeBucket(size int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case size <= 0:
		return "empty"
	case size < kb:
		return "tiny"
	case size < 100*kb:
		return "small"
	case size < mb:
		return "medium"
	case size < 10*mb:
		return "large"
	case size < 100*mb:
		return "very large"
	default:
		return "huge"
	}
}

// MetadataText describes a file in words so metadata search can match on its type,
// size class, year or folder names. Example for /Documents/Taxes/budget-2024.pdf:
//
//	budget-2024 pdf pdf document medium 2024-03-05 2024 Documents Taxes
func MetadataText(file *index.FileMetadata) string {
	parts := make([]string, 0, 12)

	name := file.Name
	if suffix := "." + file.Extension; file.Extension != "" && len(name) > len(suffix) &&
		strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		name = name[:len(name)-len(suffix)]
	}
	parts = append(parts, name)

	if file.IsDirectory {
		parts = append(parts, "folder")
	} else {
		if file.Extension != "" {
			parts = append(parts, file.Extension)
		}
		parts = append(parts, filetype.Describe(file.MimeType, file.Extension), SizeBucket(file.Size))
	}

	if !file.LastModified.IsZero() {
		modified := file.LastModified.UTC()
		parts = append(parts, modified.Format("2006-01-02"), strconv.Itoa(modified.Year()))
	}

	for _, segment := range strings.Split(strings.Trim(file.Path, "/"), "/") {
		if segment != "" && segment != file.Name {
			parts = append(parts, segment)
		}
	}
	return strings.Join(parts, " ")
}
