package wrap

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		lineMax int
		want    string
	}{
		{"Empty", "", 13, ""},
		{"WhitespaceOnly", "  \t\r\n  ", 13, ""},
		{"Short", "hello", 13, "hello"},
		{"ExactWidth", "abcdefghijklm", 13, "abcdefghijklm"},
		{"OneOver", "abcdefghijklmn", 13, "abcdefghijklm\nn"},
		{"BreaksMidWord", "hello world", 4, "hell\no wo\nrld"},
		{"Trimmed", "   hello  ", 13, "hello"},
		{"CarriageReturnsStripped", "he\rllo\r\nworld", 13, "hello\nworld"},
		{"ExplicitNewline", "ab\ncd", 13, "ab\ncd"},
		{"EmptyLinesDropped", "ab\n\n\ncd", 13, "ab\ncd"},
		{"NewlineAfterFullLine", "abcd\nef", 4, "abcd\nef"},
		{"Multibyte", "こんにちは世界", 3, "こんに\nちは世\n界"},
		{"NoWidthLimit", "a long line of text", 0, "a long line of text"},
		{"NoWidthLimitStillSplits", "ab\ncd", 0, "ab\ncd"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Wrap(tt.text, tt.lineMax))
		})
	}
}

func TestWrapShortInputUnchanged(t *testing.T) {
	inputs := []string{"a", "hi there", "0123456789012", "日本語", "x y z"}
	for _, in := range inputs {
		assert.Equal(t, strings.TrimSpace(in), Wrap(in, 13), "input %q", in)
	}
}

func TestWrapLineWidthBound(t *testing.T) {
	inputs := []string{
		"The quick brown fox jumps over the lazy dog",
		strings.Repeat("x", 100),
		"line one\nline two is quite a bit longer than thirteen\nthree",
		"ümlaut ünïcödé çhäràctérs everywhere",
	}

	for _, lineMax := range []int{1, 2, 5, 13, 40} {
		for _, in := range inputs {
			for _, line := range strings.Split(Wrap(in, lineMax), "\n") {
				assert.LessOrEqual(t, utf8.RuneCountInString(line), lineMax, "lineMax=%d input=%q", lineMax, in)
				assert.NotEmpty(t, line)
			}
		}
	}
}

func TestWrapPreservesCharacters(t *testing.T) {
	in := "The quick brown fox jumps over the lazy dog"
	out := Wrap(in, 7)
	assert.Equal(t, in, strings.ReplaceAll(out, "\n", ""))
}

func TestVisibleCharCount(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 5},
		{"hel\nlo", 5},
		{"a\r\nb", 2},
		{"こんに\nちは", 5},
		{"a b", 3},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, VisibleCharCount(tt.text), "text %q", tt.text)
	}
}

func TestVisibleCharCountIgnoresInjectedNewlines(t *testing.T) {
	in := strings.Repeat("abc", 20)
	wrapped := Wrap(in, 4)

	assert.Contains(t, wrapped, "\n")
	assert.Equal(t, utf8.RuneCountInString(in), VisibleCharCount(wrapped))
}
