// Package builder turns accepted highlight candidates into flashcards.
// The derivation is plain text manipulation: the summary becomes a prompt
// on the front, the full excerpt goes on the back.
package builder

import (
	"fmt"
	"time"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// Build creates a flashcard from a highlight candidate with default
// scheduling state, due immediately. The card keeps a back-reference to the
// highlight it came from; the highlight itself is never modified.
func Build(h domain.HighlightCandidate, now time.Time) domain.Flashcard {
	card := domain.NewFlashcard(front(h), h.Excerpt, now)
	id := h.ID
	card.SourceHighlightID = &id
	return card
}

func front(h domain.HighlightCandidate) string {
	if h.Summary != "" {
		return fmt.Sprintf("What was said about: %s", h.Summary)
	}
	return fmt.Sprintf("What was said around %.0fs?", h.StartTime)
}
