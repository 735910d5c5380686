package builder

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

func TestBuild(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	h := domain.HighlightCandidate{
		ID:         uuid.New(),
		StartTime:  10,
		EndTime:    18,
		Excerpt:    "Entropy never decreases in a closed system.",
		Summary:    "Entropy never decreases in a closed system.",
		Confidence: 0.7,
		Kind:       domain.Automatic,
	}

	card := Build(h, now)

	if card.BackText != h.Excerpt {
		t.Errorf("BackText = %q, want the excerpt", card.BackText)
	}
	if !strings.Contains(card.FrontText, h.Summary) {
		t.Errorf("FrontText = %q, want it to contain the summary", card.FrontText)
	}
	if card.SourceHighlightID == nil || *card.SourceHighlightID != h.ID {
		t.Error("expected the card to reference its source highlight")
	}
	if card.EaseFactor != domain.InitialEaseFactor {
		t.Errorf("EaseFactor = %v, want %v", card.EaseFactor, domain.InitialEaseFactor)
	}
	if card.Interval != 0 {
		t.Errorf("Interval = %d, want 0", card.Interval)
	}
	if !card.Due(now) {
		t.Error("new card should be due immediately")
	}
}

func TestBuildWithoutSummary(t *testing.T) {
	h := domain.HighlightCandidate{ID: uuid.New(), StartTime: 42.7}
	card := Build(h, time.Now())
	if !strings.Contains(card.FrontText, "43s") {
		t.Errorf("FrontText = %q, want a timestamp fallback", card.FrontText)
	}
}
