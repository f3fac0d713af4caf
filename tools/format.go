package tools

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/lexandro/davsearch-mcp/filetype"
	"github.com/lexandro/davsearch-mcp/index"
	"github.com/lexandro/davsearch-mcp/search"
)

// FormatSearchResults formats ranked search results as human-readable text.
// Each result shows its path, match type, score, file facts and the matched context.
func FormatSearchResults(response *search.Response) string {
	if len(response.Results) == 0 {
		if response.Fallback {
			return "No matches found (full index unavailable; only the top folder was searched)."
		}
		return "No matches found."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d results", len(response.Results)))
	if response.Fallback {
		builder.WriteString(" (full index unavailable; only the top folder was searched)")
	}
	builder.WriteString(":\n\n")

	for i, result := range response.Results {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("── %s ── %s match, score %.0f\n", result.File.Path, result.MatchType, result.Score))
		builder.WriteString(fmt.Sprintf("  %s\n", describeFacts(result.File)))
		if len(result.Highlights) > 0 {
			builder.WriteString(fmt.Sprintf("  matched: %s\n", strings.Join(result.Highlights, ", ")))
		}
		if result.Context != "" && result.Context != result.File.Path {
			builder.WriteString(fmt.Sprintf("  %s\n", result.Context))
		}
		if result.ContentPreview != "" {
			builder.WriteString("  preview:\n")
			for _, line := range strings.Split(result.ContentPreview, "\n") {
				builder.WriteString(fmt.Sprintf("    %s\n", line))
			}
		}
	}

	return builder.String()
}

// FormatFileResults formats a file listing as human-readable text.
func FormatFileResults(files []*index.FileMetadata, nameOnly bool, truncated bool) string {
	if len(files) == 0 {
		return "No files matched."
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Found %d files:\n\n", len(files)))

	for _, file := range files {
		if nameOnly {
			builder.WriteString(file.Path)
			builder.WriteString("\n")
		} else {
			builder.WriteString(fmt.Sprintf("  %s  (%s)\n", file.Path, describeFacts(file)))
		}
	}
	if truncated {
		builder.WriteString("\nThe folder holds more entries than the index keeps; narrow basePath to see the rest.\n")
	}

	return builder.String()
}

// FormatFileContent formats a file's content with line numbers. offset is the 1-based first
// line to show and limit the maximum number of lines; zero means from the start and to the end.
func FormatFileContent(filePath string, content string, offset int, limit int) string {
	lines := strings.Split(content, "\n")
	lineCount := len(lines)

	first := max(offset, 1)
	if first > lineCount {
		return fmt.Sprintf("Offset exceeds file length: %s has %d lines", filePath, lineCount)
	}
	last := lineCount
	if limit > 0 {
		last = min(first+limit-1, lineCount)
	}

	var builder strings.Builder
	if first == 1 && last == lineCount {
		builder.WriteString(fmt.Sprintf("── %s (%d lines) ──\n", filePath, lineCount))
	} else {
		builder.WriteString(fmt.Sprintf("── %s (lines %d-%d of %d) ──\n", filePath, first, last, lineCount))
	}

	// Calculate width needed for line numbers
	width := len(fmt.Sprintf("%d", last))

	for i := first; i <= last; i++ {
		builder.WriteString(fmt.Sprintf("%*d│ %s\n", width, i, lines[i-1]))
	}

	return builder.String()
}

// describeFacts renders type, size and age, e.g. "pdf document, 488 KiB, modified 3 days ago".
func describeFacts(file *index.FileMetadata) string {
	parts := []string{describe(file)}
	if !file.IsDirectory {
		parts = append(parts, formatFileSize(file.Size))
	}
	if !file.LastModified.IsZero() {
		parts = append(parts, "modified "+humanize.Time(file.LastModified))
	}
	return strings.Join(parts, ", ")
}

func describe(file *index.FileMetadata) string {
	if file.IsDirectory {
		return "folder"
	}
	return filetype.Describe(file.MimeType, file.Extension)
}

// formatFileSize converts bytes to a human-readable string.
func formatFileSize(bytes int64) string {
	return humanize.IBytes(uint64(max(bytes, 0)))
}
