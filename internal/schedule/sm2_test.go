package schedule

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

var testNow = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func newCard(ease float64, interval int) domain.Flashcard {
	c := domain.NewFlashcard("front", "back", testNow)
	c.EaseFactor = ease
	c.Interval = interval
	return c
}

func TestScheduleNext(t *testing.T) {
	testCases := []struct {
		name         string
		ease         float64
		interval     int
		rating       domain.Rating
		wantEase     float64
		wantInterval int
	}{
		{
			name:         "Again resets interval and lowers ease",
			ease:         2.5,
			interval:     30,
			rating:       domain.Again,
			wantEase:     2.3,
			wantInterval: 0,
		},
		{
			name:         "Again clamps ease at floor",
			ease:         1.4,
			interval:     10,
			rating:       domain.Again,
			wantEase:     1.3,
			wantInterval: 0,
		},
		{
			name:         "Good first step",
			ease:         2.5,
			interval:     0,
			rating:       domain.Good,
			wantEase:     2.5,
			wantInterval: 1,
		},
		{
			name:         "Good second step",
			ease:         2.5,
			interval:     1,
			rating:       domain.Good,
			wantEase:     2.5,
			wantInterval: 6,
		},
		{
			name:         "Good grows by ease factor",
			ease:         2.5,
			interval:     6,
			rating:       domain.Good,
			wantEase:     2.5,
			wantInterval: 15,
		},
		{
			name:         "Good floors the product",
			ease:         2.3,
			interval:     7,
			rating:       domain.Good,
			wantEase:     2.3,
			wantInterval: 16, // floor(7 * 2.3) = floor(16.1)
		},
		{
			name:         "Easy from zero interval uses minimum",
			ease:         2.5,
			interval:     0,
			rating:       domain.Easy,
			wantEase:     2.65,
			wantInterval: 4,
		},
		{
			name:         "Easy grows with the extra multiplier",
			ease:         2.0,
			interval:     10,
			rating:       domain.Easy,
			wantEase:     2.15,
			wantInterval: 26, // floor(10 * 2.0 * 1.3)
		},
		{
			name:         "Easy clamps ease at cap",
			ease:         2.95,
			interval:     10,
			rating:       domain.Easy,
			wantEase:     3.0,
			wantInterval: 38, // floor(10 * 2.95 * 1.3)
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ScheduleNext(newCard(tc.ease, tc.interval), tc.rating, testNow)
			if err != nil {
				t.Fatalf("ScheduleNext returned error: %v", err)
			}
			if math.Abs(got.EaseFactor-tc.wantEase) > 1e-9 {
				t.Errorf("EaseFactor = %v, want %v", got.EaseFactor, tc.wantEase)
			}
			if got.Interval != tc.wantInterval {
				t.Errorf("Interval = %d, want %d", got.Interval, tc.wantInterval)
			}
			wantDue := testNow.AddDate(0, 0, tc.wantInterval)
			if !got.NextReview.Equal(wantDue) {
				t.Errorf("NextReview = %v, want %v", got.NextReview, wantDue)
			}
		})
	}
}

func TestScheduleNextCounters(t *testing.T) {
	card := newCard(2.5, 0)

	card, err := ScheduleNext(card, domain.Good, testNow)
	if err != nil {
		t.Fatalf("ScheduleNext returned error: %v", err)
	}
	if card.ReviewCount != 1 || card.CorrectCount != 1 {
		t.Errorf("after Good: reviews=%d correct=%d, want 1/1", card.ReviewCount, card.CorrectCount)
	}

	card, err = ScheduleNext(card, domain.Again, testNow)
	if err != nil {
		t.Fatalf("ScheduleNext returned error: %v", err)
	}
	if card.ReviewCount != 2 || card.CorrectCount != 1 {
		t.Errorf("after Again: reviews=%d correct=%d, want 2/1", card.ReviewCount, card.CorrectCount)
	}
}

func TestScheduleNextDoesNotMutateInput(t *testing.T) {
	card := newCard(2.5, 6)
	if _, err := ScheduleNext(card, domain.Good, testNow); err != nil {
		t.Fatalf("ScheduleNext returned error: %v", err)
	}
	if card.EaseFactor != 2.5 || card.Interval != 6 || card.ReviewCount != 0 {
		t.Errorf("input card was mutated: %+v", card)
	}
}

func TestScheduleNextInvalidCardState(t *testing.T) {
	testCases := []struct {
		name     string
		ease     float64
		interval int
	}{
		{"ease below floor", 1.2, 5},
		{"ease above cap", 3.5, 5},
		{"negative interval", 2.5, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ScheduleNext(newCard(tc.ease, tc.interval), domain.Good, testNow)
			if !errors.Is(err, ErrInvalidCardState) {
				t.Errorf("error = %v, want ErrInvalidCardState", err)
			}
		})
	}
}

func TestScheduleNextInvalidRating(t *testing.T) {
	_, err := ScheduleNext(newCard(2.5, 0), domain.Rating(7), testNow)
	if !errors.Is(err, domain.ErrInvalidRating) {
		t.Errorf("error = %v, want ErrInvalidRating", err)
	}
}

// The full scenario from a card's life: two Good steps, a lapse, then an
// Easy recovery from a zero interval.
func TestScheduleNextRoundTrip(t *testing.T) {
	card := newCard(2.5, 0)

	steps := []struct {
		rating       domain.Rating
		wantInterval int
		wantEase     float64
	}{
		{domain.Good, 1, 2.5},
		{domain.Good, 6, 2.5},
		{domain.Again, 0, 2.3},
		{domain.Easy, 4, 2.45}, // floor(0*2.3*1.3)=0 lifted to the 4-day minimum
	}

	var err error
	for i, step := range steps {
		card, err = ScheduleNext(card, step.rating, testNow)
		if err != nil {
			t.Fatalf("step %d (%s): %v", i, step.rating, err)
		}
		if card.Interval != step.wantInterval {
			t.Errorf("step %d (%s): Interval = %d, want %d", i, step.rating, card.Interval, step.wantInterval)
		}
		if math.Abs(card.EaseFactor-step.wantEase) > 1e-9 {
			t.Errorf("step %d (%s): EaseFactor = %v, want %v", i, step.rating, card.EaseFactor, step.wantEase)
		}
	}
}

// Ease stays within [1.3, 3.0] under arbitrary rating sequences.
func TestScheduleNextEaseBoundsRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ratings := []domain.Rating{domain.Again, domain.Good, domain.Easy}

	for seq := 0; seq < 50; seq++ {
		card := newCard(2.5, 0)
		now := testNow
		for i := 0; i < 200; i++ {
			r := ratings[rng.Intn(len(ratings))]
			next, err := ScheduleNext(card, r, now)
			if err != nil {
				t.Fatalf("seq %d step %d: %v", seq, i, err)
			}
			if next.EaseFactor < domain.MinEaseFactor || next.EaseFactor > domain.MaxEaseFactor {
				t.Fatalf("seq %d step %d: ease %v escaped [1.3, 3.0] after %s",
					seq, i, next.EaseFactor, r)
			}
			if next.Interval < 0 {
				t.Fatalf("seq %d step %d: negative interval %d", seq, i, next.Interval)
			}
			if r == domain.Again && next.Interval != 0 {
				t.Fatalf("seq %d step %d: Again left interval %d", seq, i, next.Interval)
			}
			if r == domain.Easy && next.Interval < easyMinInterval {
				t.Fatalf("seq %d step %d: Easy produced interval %d", seq, i, next.Interval)
			}
			card = next
			now = next.NextReview
		}
	}
}
