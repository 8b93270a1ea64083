package markdown

import (
	"strings"
	"unicode"

	stripmd "github.com/writeas/go-strip-markdown/v2"
)

// DefaultSummaryLength is the rune budget for derived summaries.
const DefaultSummaryLength = 160

// Summary strips Markdown syntax from body and returns at most maxRunes runes of
// plain text. Longer text is cut at the last word boundary and ends with "…".
func Summary(body string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultSummaryLength
	}
	plain := strings.Join(strings.Fields(stripmd.Strip(body)), " ")

	runes := []rune(plain)
	if len(runes) <= maxRunes {
		return plain
	}

	cut := runes[:maxRunes]
	if i := lastSpace(cut); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}

func lastSpace(rs []rune) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if unicode.IsSpace(rs[i]) {
			return i
		}
	}
	return -1
}
