package ignore

import "testing"

func newTestMatcher(t *testing.T, rules ...string) *Matcher {
	t.Helper()
	matcher, err := NewMatcher(MatcherOptions{Rules: rules})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return matcher
}

func Test_Matcher_DefaultPatterns_GitDir(t *testing.T) {
	matcher := newTestMatcher(t)

	if !matcher.ShouldIgnore("/projects/site/.git", true) {
		t.Error("expected nested .git directory to be ignored")
	}
	if !matcher.ShouldIgnore("/.git", true) {
		t.Error("expected root .git directory to be ignored")
	}
}

func Test_Matcher_DefaultPatterns_OSLitter(t *testing.T) {
	matcher := newTestMatcher(t)

	for _, p := range []string{"/Photos/.DS_Store", "/Documents/~$budget.docx", "/Documents/Thumbs.db", "/notes.txt.swp"} {
		if !matcher.ShouldIgnore(p, false) {
			t.Errorf("expected %s to be ignored", p)
		}
	}
}

func Test_Matcher_DefaultPatterns_AllowsDocuments(t *testing.T) {
	matcher := newTestMatcher(t)

	for _, p := range []string{"/Documents/budget-2024.pdf", "/Photos/beach.jpg", "/notes.txt", "/"} {
		if matcher.ShouldIgnore(p, false) {
			t.Errorf("expected %s to NOT be ignored", p)
		}
	}
}

func Test_Matcher_GitignoreRules(t *testing.T) {
	matcher := newTestMatcher(t, "# comment", "", "Archive/", "*.bak", "!keep.bak")

	if matcher.RuleCount() != 3 {
		t.Errorf("expected 3 rules, got %d", matcher.RuleCount())
	}
	if !matcher.ShouldIgnore("/Archive", true) {
		t.Error("expected Archive/ directory to be ignored")
	}
	if matcher.ShouldIgnore("/Archive", false) {
		t.Error("expected a file named Archive to NOT match a directory rule")
	}
	if !matcher.ShouldIgnore("/Documents/old.bak", false) {
		t.Error("expected *.bak to be ignored")
	}
	if matcher.ShouldIgnore("/Documents/keep.bak", false) {
		t.Error("expected negated rule to keep keep.bak")
	}
}

func Test_Matcher_SetRulesReplaces(t *testing.T) {
	matcher := newTestMatcher(t, "*.tmp")
	matcher.SetRules(nil)

	if matcher.ShouldIgnore("/scratch.tmp", false) {
		t.Error("expected rules to be cleared")
	}
}

func Test_Matcher_DisableDefaults(t *testing.T) {
	matcher, err := NewMatcher(MatcherOptions{DisableDefaults: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if matcher.ShouldIgnore("/.git", true) {
		t.Error("expected defaults to be disabled")
	}
}
