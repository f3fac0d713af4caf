package search

import (
	"strings"
	"unicode"

	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

var queryTokenizer = bleveunicode.NewUnicodeTokenizer()

// stopWords are dropped from queries; they match nearly every document.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true, "by": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"it": true, "its": true, "this": true, "that": true, "these": true,
	"those": true, "from": true, "as": true, "into": true, "my": true,
}

// ParseQuery splits a query into unique lowercase alphanumeric terms, dropping
// punctuation and stop words. Operators (AND, field:value) are not interpreted.
func ParseQuery(query string) []string {
	return tokenize(query, true)
}

// rawTerms is ParseQuery with the query's casing preserved.
func rawTerms(query string) []string {
	return tokenize(query, false)
}

func tokenize(query string, lower bool) []string {
	var terms []string
	seen := make(map[string]bool)
	for _, token := range queryTokenizer.Tokenize([]byte(query)) {
		term := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, string(token.Term))
		if term == "" || stopWords[strings.ToLower(term)] {
			continue
		}
		if lower {
			term = strings.ToLower(term)
		}
		if seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	return terms
}
