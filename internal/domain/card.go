package domain

import (
	"time"

	"github.com/google/uuid"
)

// Scheduling defaults for a freshly created card.
const (
	InitialEaseFactor = 2.5
	MinEaseFactor     = 1.3
	MaxEaseFactor     = 3.0
)

// Flashcard is a question-answer card together with its spaced-repetition
// scheduling state. The scheduling fields are mutated only by the schedule
// package; everything else is set once at creation.
type Flashcard struct {
	ID        uuid.UUID `json:"id"`
	FrontText string    `json:"front_text"`
	BackText  string    `json:"back_text"`

	// SourceHighlightID links back to the highlight the card was built
	// from. Nil for cards created directly.
	SourceHighlightID *uuid.UUID `json:"source_highlight_id,omitempty"`

	EaseFactor   float64   `json:"ease_factor"`
	Interval     int       `json:"interval"` // days until the next review
	NextReview   time.Time `json:"next_review"`
	ReviewCount  int       `json:"review_count"`
	CorrectCount int       `json:"correct_count"`

	CreatedAt time.Time `json:"created_at"`
}

// NewFlashcard creates a card with default scheduling state, due immediately.
func NewFlashcard(front, back string, now time.Time) Flashcard {
	return Flashcard{
		ID:         uuid.New(),
		FrontText:  front,
		BackText:   back,
		EaseFactor: InitialEaseFactor,
		Interval:   0,
		NextReview: now,
		CreatedAt:  now,
	}
}

// Due reports whether the card is due for review at the given instant.
func (c Flashcard) Due(now time.Time) bool {
	return !c.NextReview.After(now)
}
