package web

import (
	"database/sql"
	"time"

	"github.com/rishabhcli/CardGenie-sub007/internal/builder"
	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
	"github.com/rishabhcli/CardGenie-sub007/internal/excerpt"
	"github.com/rishabhcli/CardGenie-sub007/internal/storage"
)

// StoreHighlight persists a highlight candidate and a flashcard built from
// it. Re-marking the same content is a no-op rather than a duplicate.
func StoreHighlight(db *storage.DB, candidate domain.HighlightCandidate, author string) error {
	hash := excerpt.Hash(candidate.Excerpt, candidate.StartTime, candidate.EndTime)

	existing, err := db.FindHighlightByHash(hash)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now()
	stored := storage.Highlight{
		Candidate:   candidate,
		ContentHash: hash,
		CreatedAt:   now,
	}
	if author != "" {
		stored.Author = sql.NullString{String: author, Valid: true}
	}
	if err := db.InsertHighlight(stored); err != nil {
		return err
	}
	return db.InsertCard(builder.Build(candidate, now))
}
