package text

import "strings"

// DefaultMaxLength bounds a target line so it fits one round.
const DefaultMaxLength = 80

// Normalize makes raw text typeable: lines are joined, characters that cannot
// be typed on a plain keyboard are dropped and the result is cut at a word
// boundary to maxLen.
func Normalize(raw string, maxLen int) string {
	joined := strings.ReplaceAll(strings.ReplaceAll(raw, "\r\n", "\n"), "\n", " ")
	return Cutoff(Transliterate(joined), maxLen)
}

// Transliterate keeps printable ASCII, turns tabs and other ASCII whitespace
// into spaces and drops everything else.
func Transliterate(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= ' ' && r <= '~':
			b.WriteRune(r)
		case r == '\t' || r == '\v' || r == '\f' || r == '\r':
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// Cutoff keeps whole words while the running length, counting one trailing
// separator per word, plus the next word stays within maxLen. Whitespace runs
// collapse to single spaces.
func Cutoff(s string, maxLen int) string {
	var b strings.Builder
	for _, word := range strings.Fields(s) {
		if b.Len()+len(word) > maxLen {
			break
		}
		b.WriteString(word)
		b.WriteByte(' ')
	}
	return strings.TrimSpace(b.String())
}
