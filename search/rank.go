package search

import (
	"sort"
	"strings"
	"time"

	"github.com/lexandro/davsearch-mcp/index"
)

const (
	recencyBonusMax    = 10.0
	recencyWindow      = 30 * 24 * time.Hour
	smallFileBonus     = 5.0
	smallFileThreshold = 100 * 1024
	commonTypeBonus    = 3.0
)

var commonExtensions = map[string]bool{
	"txt": true, "md": true, "json": true, "js": true, "ts": true, "py": true,
}

// applyBonuses adds recency, size and type bonuses to a base score and clamps to [0, 100].
func applyBonuses(score float64, file *index.FileMetadata, now time.Time) float64 {
	if !file.LastModified.IsZero() {
		age := now.Sub(file.LastModified)
		if age < recencyWindow {
			// Clock skew can put files in the future; they count as brand new
			age = max(age, 0)
			score += recencyBonusMax * (1 - float64(age)/float64(recencyWindow))
		}
	}
	if !file.IsDirectory && file.Size < smallFileThreshold {
		score += smallFileBonus
	}
	if commonExtensions[file.Extension] {
		score += commonTypeBonus
	}
	return min(max(score, 0), 100)
}

// mergeResults folds results for the same path into one. The highest-scoring match
// decides type, score and context; highlights from all matches are united.
func mergeResults(results []Result) []Result {
	byPath := make(map[string]int, len(results))
	merged := make([]Result, 0, len(results))
	for _, result := range results {
		i, seen := byPath[result.File.Path]
		if !seen {
			byPath[result.File.Path] = len(merged)
			result.Highlights = dedupStrings(nil, result.Highlights)
			merged = append(merged, result)
			continue
		}
		existing := &merged[i]
		highlights := dedupStrings(existing.Highlights, result.Highlights)
		if result.Score > existing.Score {
			*existing = result
		}
		existing.Highlights = highlights
	}
	return merged
}

func dedupStrings(base []string, more []string) []string {
	out := make([]string, 0, len(base)+len(more))
	seen := make(map[string]bool, len(base)+len(more))
	for _, s := range append(append([]string(nil), base...), more...) {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// sortResults orders by score, then match type, then name and path so that equal
// inputs always produce the same order.
func sortResults(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := a.MatchType.typePriority(), b.MatchType.typePriority(); pa != pb {
			return pa < pb
		}
		if c := strings.Compare(strings.ToLower(a.File.Name), strings.ToLower(b.File.Name)); c != 0 {
			return c < 0
		}
		return a.File.Path < b.File.Path
	})
}
