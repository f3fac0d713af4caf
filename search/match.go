package search

import (
	"path"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/lexandro/davsearch-mcp/index"
)

const (
	exactNameScore     = 100.0
	wholeWordScore     = 80.0
	partialNameScore   = 60.0
	positionBonusRange = 20.0

	termOccurrenceScore = 10.0
	termScoreCap        = 50.0
	coverageBonus       = 30.0
	metadataWeight      = 0.7

	snippetRadius = 60
)

// matchFilename scores a file name against the query. An exact (case-insensitive)
// match of the whole query against the name, with or without extension, scores 100.
// Otherwise every term found in the name adds 80 for a whole-word hit or 60 plus up
// to 20 for an early position; the sum is capped at 100.
func matchFilename(file *index.FileMetadata, query string, terms []string) (float64, []string) {
	name := file.Name
	lowerName := strings.ToLower(name)
	stem := strings.TrimSuffix(lowerName, path.Ext(lowerName))
	query = strings.ToLower(strings.TrimSpace(query))

	if query != "" && (query == lowerName || query == stem) {
		return exactNameScore, []string{originalSlice(name, lowerName, 0, len(query), query)}
	}

	score := 0.0
	var highlights []string
	for _, term := range terms {
		idx := strings.Index(lowerName, term)
		if idx < 0 {
			continue
		}
		if isWholeWord(lowerName, idx, len(term)) {
			score += wholeWordScore
		} else {
			score += partialNameScore + positionBonusRange*(1-float64(idx)/float64(len(lowerName)))
		}
		highlights = appendOccurrences(highlights, name, lowerName, term)
	}
	return min(score, 100), highlights
}

// matchText scores term frequency in text: each term adds 10 per occurrence up to 50,
// and a multi-term query earns up to 30 more for the share of distinct terms present.
// The context is a snippet around the first hit.
func matchText(text string, terms []string) (float64, []string, string) {
	if text == "" || len(terms) == 0 {
		return 0, nil, ""
	}
	lowerText := strings.ToLower(text)

	score := 0.0
	matched := 0
	firstHit := -1
	firstLen := 0
	var highlights []string
	for _, term := range terms {
		count := strings.Count(lowerText, term)
		if count == 0 {
			continue
		}
		matched++
		score += min(float64(count)*termOccurrenceScore, termScoreCap)

		idx := strings.Index(lowerText, term)
		highlights = appendOccurrences(highlights, text, lowerText, term)
		if firstHit < 0 || idx < firstHit {
			firstHit, firstLen = idx, len(term)
		}
	}
	if matched == 0 {
		return 0, nil, ""
	}
	if len(terms) > 1 {
		score += coverageBonus * float64(matched) / float64(len(terms))
	}

	excerpt := ""
	if len(lowerText) == len(text) {
		excerpt = snippet(text, firstHit, firstLen)
	}
	return min(score, 100), highlights, excerpt
}

// matchMetadata scores the metadata description like content, weighted down.
func matchMetadata(metadataText string, terms []string) (float64, []string, string) {
	score, highlights, excerpt := matchText(metadataText, terms)
	return score * metadataWeight, highlights, excerpt
}

// isWholeWord reports whether s[idx:idx+n] is bounded by non-alphanumerics or string edges.
func isWholeWord(s string, idx int, n int) bool {
	if idx > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:idx])
		if isWordRune(r) {
			return false
		}
	}
	if end := idx + n; end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// originalSlice maps a match found in lower back to the original casing. When lowercasing
// changed byte lengths the offsets are unusable and the lowercase term is returned.
func originalSlice(original string, lower string, idx int, n int, fallback string) string {
	if len(original) != len(lower) || idx < 0 || idx+n > len(original) {
		return fallback
	}
	return original[idx : idx+n]
}

// appendOccurrences adds every distinct original-cased form of term found in lower.
func appendOccurrences(highlights []string, original string, lower string, term string) []string {
	for from := 0; from < len(lower); {
		idx := strings.Index(lower[from:], term)
		if idx < 0 {
			break
		}
		idx += from
		if form := originalSlice(original, lower, idx, len(term), term); !slices.Contains(highlights, form) {
			highlights = append(highlights, form)
		}
		from = idx + len(term)
	}
	return highlights
}

// snippet cuts text around [idx, idx+n) on rune boundaries, marking cut edges with "...".
func snippet(text string, idx int, n int) string {
	if idx < 0 {
		return ""
	}
	start := max(idx-snippetRadius, 0)
	end := min(idx+n+snippetRadius, len(text))
	for start > 0 && !utf8.RuneStart(text[start]) {
		start--
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}

	s := strings.TrimSpace(strings.ReplaceAll(text[start:end], "\n", " "))
	if start > 0 {
		s = "..." + s
	}
	if end < len(text) {
		s = s + "..."
	}
	return s
}

// keepCaseSensitive reports whether any highlight contains one of the query's
// terms in their original casing.
func keepCaseSensitive(highlights []string, terms []string) bool {
	for _, highlight := range highlights {
		for _, term := range terms {
			if strings.Contains(highlight, term) {
				return true
			}
		}
	}
	return false
}
