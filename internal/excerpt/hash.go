// Package excerpt fingerprints highlight content so repeated syncs of the
// same source do not produce duplicate highlights.
package excerpt

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Normalize cleans an excerpt for hashing: lowercased, surrounding
// whitespace trimmed, and line endings unified. Cosmetic edits to a shared
// highlight therefore keep the same identity.
func Normalize(text string) string {
	t := strings.ToLower(text)
	t = strings.TrimSpace(t)
	t = strings.ReplaceAll(t, "\r\n", "\n")
	return t
}

// Hash returns the SHA-256 hex fingerprint of a highlight's content: the
// normalized excerpt joined with its timestamp range. The range is part of
// the identity so the same phrase highlighted at two different moments
// remains two highlights.
func Hash(text string, start, end float64) string {
	content := fmt.Sprintf("%s\n%.3f\n%.3f", Normalize(text), start, end)
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}
