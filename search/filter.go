package search

import "github.com/lexandro/davsearch-mcp/index"

// filterCandidates applies the type, size and date filters. All are optional and
// AND-combined. Directories have no extension, so a type filter excludes them.
func filterCandidates(files []*index.FileMetadata, n normalized) []*index.FileMetadata {
	if n.fileTypes == nil && n.SizeRange == nil && n.DateRange == nil {
		return files
	}
	out := make([]*index.FileMetadata, 0, len(files))
	for _, file := range files {
		if n.fileTypes != nil && !n.fileTypes[file.Extension] {
			continue
		}
		if r := n.SizeRange; r != nil {
			if file.Size < r.Min || (r.Max != nil && file.Size > *r.Max) {
				continue
			}
		}
		if r := n.DateRange; r != nil {
			if !r.From.IsZero() && file.LastModified.Before(r.From) {
				continue
			}
			if !r.To.IsZero() && file.LastModified.After(r.To) {
				continue
			}
		}
		out = append(out, file)
	}
	return out
}
