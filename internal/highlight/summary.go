package highlight

import (
	"fmt"
	"math"
	"strings"
)

// summaryMaxLen bounds a derived summary when no sentence boundary is found.
const summaryMaxLen = 80

// Summarize derives a short label for an excerpt: the first sentence when
// one ends within the length bound, otherwise a truncation with an ellipsis.
func Summarize(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if idx := strings.IndexAny(text, ".!?"); idx >= 0 && idx < summaryMaxLen {
		return strings.TrimSpace(text[:idx+1])
	}
	if len(text) <= summaryMaxLen {
		return text
	}

	cut := text[:summaryMaxLen]
	if sp := strings.LastIndex(cut, " "); sp > 0 {
		cut = cut[:sp]
	}
	return cut + "…"
}

// FormatTimestamp renders seconds as zero-padded MM:SS. Negative input is
// treated as zero; the minute field grows past 99 for very long recordings.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
