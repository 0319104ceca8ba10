// Package wrap formats subtitle text into fixed-width lines.
//
// Width is measured in characters (runes), not bytes and not words: a
// line is broken as soon as it holds the maximum number of characters,
// even in the middle of a word. Explicit newlines in the input always
// start a new line.
package wrap

import "strings"

// Wrap breaks text into lines of at most lineMax characters.
//
// Carriage returns are removed and surrounding whitespace is trimmed
// before wrapping. Empty lines are dropped. A lineMax of zero or less
// disables width breaking; explicit newlines still split lines.
func Wrap(text string, lineMax int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r", ""))
	if text == "" {
		return ""
	}

	var lines []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}

	for _, r := range text {
		if r == '\n' {
			flush()
			continue
		}
		cur = append(cur, r)
		if lineMax > 0 && len(cur) >= lineMax {
			flush()
		}
	}
	flush()

	return strings.Join(lines, "\n")
}

// VisibleCharCount returns the number of characters in text, not counting
// newlines and carriage returns.
func VisibleCharCount(text string) int {
	n := 0
	for _, r := range text {
		if r != '\n' && r != '\r' {
			n++
		}
	}
	return n
}
