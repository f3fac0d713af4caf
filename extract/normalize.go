package extract

import (
	"strings"
	"unicode"
)

// Normalize strips control characters (except tab and newline), collapses whitespace
// runs and truncates to maxChars runes. A run that contains a newline becomes a single
// newline so line-based previews still work; any other run becomes one space.
func Normalize(raw string, maxChars int) string {
	raw = strings.ToValidUTF8(raw, "")

	var b strings.Builder
	b.Grow(min(len(raw), maxChars*2))

	written := 0
	inSpace := false
	spaceHasNewline := false
	flushSpace := func() {
		if !inSpace {
			return
		}
		if written > 0 {
			if spaceHasNewline {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
			written++
		}
		inSpace = false
		spaceHasNewline = false
	}

	for _, r := range raw {
		if written >= maxChars {
			break
		}
		switch {
		case r == '\n':
			inSpace = true
			spaceHasNewline = true
		case unicode.IsSpace(r):
			inSpace = true
		case unicode.IsControl(r):
			continue
		default:
			flushSpace()
			if written < maxChars {
				b.WriteRune(r)
				written++
			}
		}
	}
	return strings.TrimRight(b.String(), " \n")
}
