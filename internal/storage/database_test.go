package storage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCardRoundTrip(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	card := domain.NewFlashcard("front", "back", now)
	if err := db.InsertCard(card); err != nil {
		t.Fatalf("InsertCard: %v", err)
	}

	got, err := db.FindCardByID(card.ID)
	if err != nil {
		t.Fatalf("FindCardByID: %v", err)
	}
	if got == nil {
		t.Fatal("card not found after insert")
	}
	if got.FrontText != "front" || got.BackText != "back" {
		t.Errorf("text = %q/%q, want front/back", got.FrontText, got.BackText)
	}
	if got.EaseFactor != domain.InitialEaseFactor || got.Interval != 0 {
		t.Errorf("scheduling state = %v/%d, want defaults", got.EaseFactor, got.Interval)
	}
	if got.SourceHighlightID != nil {
		t.Error("expected no source highlight reference")
	}
}

func TestFindCardByIDMissing(t *testing.T) {
	db := openTestDB(t)
	got, err := db.FindCardByID(uuid.New())
	if err != nil {
		t.Fatalf("FindCardByID: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown card, got %+v", got)
	}
}

func TestUpdateCardSchedule(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	card := domain.NewFlashcard("front", "back", now)
	if err := db.InsertCard(card); err != nil {
		t.Fatalf("InsertCard: %v", err)
	}

	card.EaseFactor = 2.3
	card.Interval = 6
	card.NextReview = now.AddDate(0, 0, 6)
	card.ReviewCount = 3
	card.CorrectCount = 2
	if err := db.UpdateCardSchedule(card); err != nil {
		t.Fatalf("UpdateCardSchedule: %v", err)
	}

	got, err := db.FindCardByID(card.ID)
	if err != nil {
		t.Fatalf("FindCardByID: %v", err)
	}
	if got.EaseFactor != 2.3 || got.Interval != 6 || got.ReviewCount != 3 || got.CorrectCount != 2 {
		t.Errorf("scheduling state not persisted: %+v", got)
	}
}

func TestGetDueCards(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	due := domain.NewFlashcard("due", "b", now.AddDate(0, 0, -1))
	future := domain.NewFlashcard("future", "b", now)
	future.Interval = 10
	future.NextReview = now.AddDate(0, 0, 10)

	if err := db.InsertCard(due); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertCard(future); err != nil {
		t.Fatal(err)
	}

	cards, err := db.GetDueCards(now)
	if err != nil {
		t.Fatalf("GetDueCards: %v", err)
	}
	if len(cards) != 1 {
		t.Fatalf("got %d due cards, want 1", len(cards))
	}
	if cards[0].FrontText != "due" {
		t.Errorf("due card = %q, want %q", cards[0].FrontText, "due")
	}
}

func testHighlight(hash string) Highlight {
	return Highlight{
		Candidate: domain.HighlightCandidate{
			ID:         uuid.New(),
			StartTime:  10,
			EndTime:    18,
			Excerpt:    "Entropy never decreases.",
			Summary:    "Entropy never decreases.",
			Confidence: 0.7,
			Kind:       domain.Automatic,
		},
		ContentHash: hash,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	db := openTestDB(t)

	h := testHighlight("hash-1")
	h.Author = sql.NullString{String: "John", Valid: true}
	if err := db.InsertHighlight(h); err != nil {
		t.Fatalf("InsertHighlight: %v", err)
	}

	got, err := db.FindHighlightByHash("hash-1")
	if err != nil {
		t.Fatalf("FindHighlightByHash: %v", err)
	}
	if got == nil {
		t.Fatal("highlight not found after insert")
	}
	if got.Candidate.ID != h.Candidate.ID {
		t.Errorf("id = %s, want %s", got.Candidate.ID, h.Candidate.ID)
	}
	if got.Candidate.Kind != domain.Automatic {
		t.Errorf("kind = %s, want Automatic", got.Candidate.Kind)
	}
	if !got.Author.Valid || got.Author.String != "John" {
		t.Errorf("author = %+v, want John", got.Author)
	}

	missing, err := db.FindHighlightByHash("no-such-hash")
	if err != nil {
		t.Fatalf("FindHighlightByHash: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown hash")
	}
}

func TestInsertHighlightDuplicateHash(t *testing.T) {
	db := openTestDB(t)

	if err := db.InsertHighlight(testHighlight("dup")); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := db.InsertHighlight(testHighlight("dup")); err == nil {
		t.Error("expected unique constraint error for duplicate content hash")
	}
}

func TestDeleteHighlightCascadesToCards(t *testing.T) {
	db := openTestDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	h := testHighlight("hash-2")
	if err := db.InsertHighlight(h); err != nil {
		t.Fatal(err)
	}

	card := domain.NewFlashcard("front", "back", now)
	hid := h.Candidate.ID
	card.SourceHighlightID = &hid
	if err := db.InsertCard(card); err != nil {
		t.Fatal(err)
	}

	if err := db.DeleteHighlight(hid); err != nil {
		t.Fatalf("DeleteHighlight: %v", err)
	}

	gotCard, err := db.FindCardByID(card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotCard != nil {
		t.Error("expected the derived card to be deleted with its highlight")
	}
	gotHighlight, err := db.FindHighlightByHash("hash-2")
	if err != nil {
		t.Fatal(err)
	}
	if gotHighlight != nil {
		t.Error("expected the highlight to be deleted")
	}
}

func TestSourceLifecycle(t *testing.T) {
	db := openTestDB(t)

	id, err := db.InsertSource("/lectures", "local")
	if err != nil {
		t.Fatalf("InsertSource: %v", err)
	}

	src, err := db.FindSourceByPath("/lectures")
	if err != nil {
		t.Fatalf("FindSourceByPath: %v", err)
	}
	if src == nil || src.ID != id || src.Type != "local" {
		t.Fatalf("source = %+v, want id %d type local", src, id)
	}
	if src.LastScanned.Valid {
		t.Error("expected no last_scanned before first sync")
	}

	if err := db.UpdateSourceLastScanned(id); err != nil {
		t.Fatalf("UpdateSourceLastScanned: %v", err)
	}
	src, err = db.FindSourceByPath("/lectures")
	if err != nil {
		t.Fatal(err)
	}
	if !src.LastScanned.Valid {
		t.Error("expected last_scanned to be set")
	}

	if err := db.DeleteSource(id); err != nil {
		t.Fatalf("DeleteSource: %v", err)
	}
	src, err = db.FindSourceByPath("/lectures")
	if err != nil {
		t.Fatal(err)
	}
	if src != nil {
		t.Error("expected source to be deleted")
	}
}
