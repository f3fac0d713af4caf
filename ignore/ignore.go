package ignore

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/denormal/go-gitignore"
)

// Matcher decides which store paths the indexer skips.
// It combines DefaultIgnorePatterns with user rules written in gitignore syntax.
// Thread-safe: SetRules acquires a write lock, ShouldIgnore acquires a read lock.
type Matcher struct {
	mu          sync.RWMutex
	useDefaults bool
	rules       gitignore.GitIgnore
	ruleCount   int
}

// MatcherOptions configures the ignore matcher.
type MatcherOptions struct {
	// Rules are gitignore-style lines, e.g. "Archive/", "*.bak", "!keep.bak".
	Rules []string
	// DisableDefaults turns off DefaultIgnorePatterns.
	DisableDefaults bool
}

// NewMatcher validates the default patterns and compiles the user rules.
func NewMatcher(options MatcherOptions) (*Matcher, error) {
	for _, pattern := range DefaultIgnorePatterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid default ignore pattern %q", pattern)
		}
	}

	matcher := &Matcher{useDefaults: !options.DisableDefaults}
	matcher.SetRules(options.Rules)
	return matcher, nil
}

// SetRules replaces the user rules.
func (m *Matcher) SetRules(rules []string) {
	compiled, count := compileRules(rules)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = compiled
	m.ruleCount = count
}

// RuleCount returns the number of non-empty, non-comment user rules.
func (m *Matcher) RuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ruleCount
}

// ShouldIgnore reports whether a store path is excluded. Excluded directories
// are not recursed into, so their descendants never reach the matcher.
func (m *Matcher) ShouldIgnore(storePath string, isDir bool) bool {
	relativePath := strings.TrimPrefix(path.Clean("/"+storePath), "/")
	if relativePath == "" {
		return false
	}

	if m.useDefaults && matchesDefaultPatterns(relativePath) {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.rules == nil {
		return false
	}
	match := m.rules.Relative(relativePath, isDir)
	return match != nil && match.Ignore()
}

func matchesDefaultPatterns(relativePath string) bool {
	for _, pattern := range DefaultIgnorePatterns {
		// Patterns were validated in NewMatcher, Match cannot fail
		if matched, _ := doublestar.Match(pattern, relativePath); matched {
			return true
		}
	}
	return false
}

func compileRules(rules []string) (gitignore.GitIgnore, int) {
	lines := make([]string, 0, len(rules))
	for _, rule := range rules {
		rule = strings.TrimSpace(rule)
		if rule == "" || strings.HasPrefix(rule, "#") {
			continue
		}
		lines = append(lines, rule)
	}
	if len(lines) == 0 {
		return nil, 0
	}
	return gitignore.New(strings.NewReader(strings.Join(lines, "\n")), "/", nil), len(lines)
}
