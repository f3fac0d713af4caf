package search

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lexandro/davsearch-mcp/filetype"
	"github.com/lexandro/davsearch-mcp/store"
)

// Scope is an axis a query is matched along.
type Scope string

const (
	ScopeFilename Scope = "filename"
	ScopeContent  Scope = "content"
	ScopeMetadata Scope = "metadata"
)

// typePriority breaks score ties: filename beats content beats metadata.
func (s Scope) typePriority() int {
	switch s {
	case ScopeFilename:
		return 0
	case ScopeContent:
		return 1
	default:
		return 2
	}
}

// ParseScope accepts a scope name case-insensitively.
func ParseScope(name string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(name))) {
	case ScopeFilename:
		return ScopeFilename, nil
	case ScopeContent:
		return ScopeContent, nil
	case ScopeMetadata:
		return ScopeMetadata, nil
	}
	return "", fmt.Errorf("unknown search scope %q (expected filename, content or metadata)", name)
}

// SizeRange bounds file size in bytes, both ends inclusive. A nil Max is open,
// so {Min: 0, Max: Int64(0)} selects empty files.
type SizeRange struct {
	Min int64
	Max *int64
}

// DateRange bounds the last-modified time. A zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Options is one search request. Only Query is required.
type Options struct {
	Query          string
	SearchIn       []Scope  // Default: filename and content
	FileTypes      []string // Extension allow-list, with or without dots
	BasePath       string   // Default: "/"
	Limit          int      // Default: Config.DefaultLimit
	IncludeContent bool     // Attach a short preview to filename and content matches
	CaseSensitive  bool
	SizeRange      *SizeRange
	DateRange      *DateRange
	QuickSearch    *bool // Shallow root walk; nil means true
	MaxDepth       int   // Overrides the walk depth when > 0
}

// Bool returns a pointer to v, for Options.QuickSearch.
func Bool(v bool) *bool {
	return &v
}

// Int64 returns a pointer to v, for SizeRange.Max.
func Int64(v int64) *int64 {
	return &v
}

// Validate reports option combinations that can never match anything.
func (o Options) Validate() error {
	if strings.TrimSpace(o.Query) == "" {
		return ErrEmptyQuery
	}
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", o.Limit)
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("maxDepth must not be negative, got %d", o.MaxDepth)
	}
	for _, scope := range o.SearchIn {
		if _, err := ParseScope(string(scope)); err != nil {
			return err
		}
	}
	if r := o.SizeRange; r != nil {
		if r.Min < 0 || (r.Max != nil && *r.Max < 0) {
			return fmt.Errorf("size range bounds must not be negative")
		}
		if r.Max != nil && r.Min > *r.Max {
			return fmt.Errorf("size range min %d exceeds max %d", r.Min, *r.Max)
		}
	}
	if r := o.DateRange; r != nil && !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return fmt.Errorf("date range starts after it ends")
	}
	return nil
}

// normalized is Options with defaults applied and lists canonicalized.
type normalized struct {
	Options
	scopes    []Scope
	fileTypes map[string]bool
	quick     bool
}

func (o Options) normalize(defaultLimit int) normalized {
	n := normalized{Options: o}
	n.BasePath = store.CleanPath(o.BasePath)
	if n.Limit <= 0 {
		n.Limit = defaultLimit
	}
	n.quick = o.QuickSearch == nil || *o.QuickSearch

	for _, scope := range o.SearchIn {
		parsed, err := ParseScope(string(scope))
		if err != nil || slices.Contains(n.scopes, parsed) {
			continue
		}
		n.scopes = append(n.scopes, parsed)
	}
	if len(n.scopes) == 0 {
		n.scopes = []Scope{ScopeFilename, ScopeContent}
	}
	slices.SortFunc(n.scopes, func(a, b Scope) int {
		return strings.Compare(string(a), string(b))
	})

	for _, ext := range o.FileTypes {
		if ext = filetype.NormalizeExtension(ext); ext != "" {
			if n.fileTypes == nil {
				n.fileTypes = make(map[string]bool)
			}
			n.fileTypes[ext] = true
		}
	}
	return n
}

func (n normalized) wants(scope Scope) bool {
	return slices.Contains(n.scopes, scope)
}

// cacheKey identifies a result set. Everything that changes the outcome is part of it.
func (n normalized) cacheKey() string {
	fileTypes := make([]string, 0, len(n.fileTypes))
	for ext := range n.fileTypes {
		fileTypes = append(fileTypes, ext)
	}
	slices.Sort(fileTypes)

	scopes := make([]string, len(n.scopes))
	for i, scope := range n.scopes {
		scopes[i] = string(scope)
	}

	// Case-sensitive results depend on the query's casing
	query := strings.TrimSpace(n.Query)
	if !n.CaseSensitive {
		query = strings.ToLower(query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "q=%s|in=%s|types=%s|base=%s|cs=%t|limit=%d|content=%t|quick=%t|depth=%d",
		query, strings.Join(scopes, ","), strings.Join(fileTypes, ","),
		n.BasePath, n.CaseSensitive, n.Limit, n.IncludeContent, n.quick, n.MaxDepth)
	if r := n.SizeRange; r != nil {
		fmt.Fprintf(&b, "|size=%d-", r.Min)
		if r.Max != nil {
			fmt.Fprintf(&b, "%d", *r.Max)
		}
	}
	if r := n.DateRange; r != nil {
		fmt.Fprintf(&b, "|date=%d-%d", r.From.Unix(), r.To.Unix())
	}
	return b.String()
}

// ParseDate accepts a calendar date (2006-01-02, taken as UTC midnight) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: expected YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
