package search

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyQuery is returned by Options.Validate for a blank query.
var ErrEmptyQuery = errors.New("query is empty")

// SearchError is returned when a query cannot be served at all, not even by the
// fallback path. Suggestions are hints a user can act on.
type SearchError struct {
	Message     string
	Suggestions []string
	Err         error
}

func (e *SearchError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// Hint renders the suggestions as a bulleted list.
func (e *SearchError) Hint() string {
	var b strings.Builder
	for _, suggestion := range e.Suggestions {
		b.WriteString("- ")
		b.WriteString(suggestion)
		b.WriteString("\n")
	}
	return b.String()
}

func newSearchError(opts normalized, err error) *SearchError {
	searchErr := &SearchError{
		Message: fmt.Sprintf("search for %q in %s failed", opts.Query, opts.BasePath),
		Err:     err,
	}
	if opts.BasePath == "/" {
		searchErr.Suggestions = append(searchErr.Suggestions, "narrow basePath to a specific folder")
	}
	if !opts.quick {
		searchErr.Suggestions = append(searchErr.Suggestions, "enable quickSearch for root searches")
	}
	if len(opts.fileTypes) == 0 {
		searchErr.Suggestions = append(searchErr.Suggestions, "add fileTypes to restrict the candidate set")
	}
	if opts.Limit > 20 {
		searchErr.Suggestions = append(searchErr.Suggestions, "reduce limit")
	}
	if len(searchErr.Suggestions) == 0 {
		searchErr.Suggestions = []string{"retry later; the file store may be overloaded"}
	}
	return searchErr
}
