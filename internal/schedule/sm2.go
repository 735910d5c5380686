// Package schedule implements the SM-2 spaced-repetition algorithm over
// flashcard scheduling state, plus aggregate mastery reporting for study
// plans. All operations are pure: they take the current instant as an
// argument, mutate nothing, and perform no I/O.
package schedule

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// ErrInvalidCardState is returned when an incoming card violates the
// ease-factor or interval invariants. The card is never silently repaired:
// an out-of-range value means the stored record is corrupt, and masking it
// would quietly distort months of review history.
// Use errors.Is to check for it.
var ErrInvalidCardState = errors.New("invalid card state")

const (
	// easePenalty is subtracted from the ease factor on a failed review.
	easePenalty = 0.2
	// easeReward is added to the ease factor on an Easy review.
	easeReward = 0.15
	// easyMultiplier stretches the interval beyond the plain ease growth
	// for Easy reviews.
	easyMultiplier = 1.3
	// easyMinInterval is the smallest interval an Easy review can produce.
	easyMinInterval = 4
)

// ScheduleNext applies one review to the card and returns the updated copy.
// The input card is not mutated; the caller persists the result.
//
// Rating behavior:
//   - Again resets the interval to 0 and lowers the ease factor by 0.2,
//     floored at 1.3.
//   - Good walks the interval 0 → 1 → 6, then grows it by the ease factor.
//   - Easy grows the interval by ease × 1.3 with a floor of 4 days and
//     raises the ease factor by 0.15, capped at 3.0.
//
// After every call 1.3 ≤ EaseFactor ≤ 3.0 holds, ReviewCount is incremented,
// CorrectCount is incremented unless the rating was Again, and NextReview is
// now plus the new interval in days (interval 0 means due immediately).
func ScheduleNext(card domain.Flashcard, rating domain.Rating, now time.Time) (domain.Flashcard, error) {
	if card.EaseFactor < domain.MinEaseFactor || card.EaseFactor > domain.MaxEaseFactor {
		return domain.Flashcard{}, fmt.Errorf("%w: ease factor %.4f out of [%.1f, %.1f]",
			ErrInvalidCardState, card.EaseFactor, domain.MinEaseFactor, domain.MaxEaseFactor)
	}
	if card.Interval < 0 {
		return domain.Flashcard{}, fmt.Errorf("%w: negative interval %d", ErrInvalidCardState, card.Interval)
	}
	if !rating.IsValid() {
		return domain.Flashcard{}, fmt.Errorf("%w: rating %d", domain.ErrInvalidRating, int(rating))
	}

	c := card

	switch rating {
	case domain.Again:
		c.Interval = 0
		c.EaseFactor = card.EaseFactor - easePenalty

	case domain.Good:
		switch card.Interval {
		case 0:
			c.Interval = 1
		case 1:
			c.Interval = 6
		default:
			c.Interval = int(math.Floor(float64(card.Interval) * card.EaseFactor))
		}

	case domain.Easy:
		grown := int(math.Floor(float64(card.Interval) * card.EaseFactor * easyMultiplier))
		if grown < easyMinInterval {
			grown = easyMinInterval
		}
		c.Interval = grown
		c.EaseFactor = card.EaseFactor + easeReward
	}

	// Clamp inclusively on every call, not only when a bound is first
	// crossed.
	c.EaseFactor = math.Min(domain.MaxEaseFactor, math.Max(domain.MinEaseFactor, c.EaseFactor))

	c.ReviewCount = card.ReviewCount + 1
	if rating != domain.Again {
		c.CorrectCount = card.CorrectCount + 1
	}
	c.NextReview = now.AddDate(0, 0, c.Interval)

	return c, nil
}
