package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Registers the sqlite driver

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Highlight is the stored form of a highlight candidate, carrying the
// bookkeeping columns the domain type does not.
type Highlight struct {
	Candidate   domain.HighlightCandidate
	ContentHash string
	Author      sql.NullString
	SourceID    sql.NullInt64
	CreatedAt   time.Time
}

// InsertHighlight stores a candidate under its content hash.
func (db *DB) InsertHighlight(h Highlight) error {
	kind, err := h.Candidate.Kind.MarshalText()
	if err != nil {
		return fmt.Errorf("failed to insert highlight %s: %w", h.Candidate.ID, err)
	}
	_, err = db.conn.Exec(`
		INSERT INTO highlights (id, content_hash, excerpt, summary, start_time, end_time, confidence, kind, author, source_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		h.Candidate.ID.String(),
		h.ContentHash,
		h.Candidate.Excerpt,
		h.Candidate.Summary,
		h.Candidate.StartTime,
		h.Candidate.EndTime,
		h.Candidate.Confidence,
		string(kind),
		h.Author,
		h.SourceID,
		h.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert highlight %s: %w", h.Candidate.ID, err)
	}
	return nil
}

// FindHighlightByHash retrieves a highlight by its content hash.
// Returns nil when no highlight matches.
func (db *DB) FindHighlightByHash(hash string) (*Highlight, error) {
	row := db.conn.QueryRow(`
		SELECT id, content_hash, excerpt, summary, start_time, end_time, confidence, kind, author, source_id, created_at
		FROM highlights WHERE content_hash = ?
	`, hash)

	h, err := scanHighlight(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find highlight by hash %s: %w", hash, err)
	}
	return h, nil
}

// GetAllHighlights retrieves every stored highlight, newest first.
func (db *DB) GetAllHighlights() ([]Highlight, error) {
	rows, err := db.conn.Query(`
		SELECT id, content_hash, excerpt, summary, start_time, end_time, confidence, kind, author, source_id, created_at
		FROM highlights ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get highlights: %w", err)
	}
	defer rows.Close()

	var highlights []Highlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan highlight row: %w", err)
		}
		highlights = append(highlights, *h)
	}
	return highlights, rows.Err()
}

// GetHighlightsBySourceID retrieves all highlights imported from a source.
func (db *DB) GetHighlightsBySourceID(sourceID int64) ([]Highlight, error) {
	rows, err := db.conn.Query(`
		SELECT id, content_hash, excerpt, summary, start_time, end_time, confidence, kind, author, source_id, created_at
		FROM highlights WHERE source_id = ?
	`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get highlights for source ID %d: %w", sourceID, err)
	}
	defer rows.Close()

	var highlights []Highlight
	for rows.Next() {
		h, err := scanHighlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan highlight row for source ID %d: %w", sourceID, err)
		}
		highlights = append(highlights, *h)
	}
	return highlights, rows.Err()
}

// DeleteHighlight removes a highlight and any flashcards built from it.
func (db *DB) DeleteHighlight(id uuid.UUID) error {
	if _, err := db.conn.Exec(`DELETE FROM flashcards WHERE source_highlight_id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete cards for highlight %s: %w", id, err)
	}
	if _, err := db.conn.Exec(`DELETE FROM highlights WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete highlight %s: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHighlight(row rowScanner) (*Highlight, error) {
	var h Highlight
	var id, kind string
	err := row.Scan(
		&id,
		&h.ContentHash,
		&h.Candidate.Excerpt,
		&h.Candidate.Summary,
		&h.Candidate.StartTime,
		&h.Candidate.EndTime,
		&h.Candidate.Confidence,
		&kind,
		&h.Author,
		&h.SourceID,
		&h.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if h.Candidate.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad highlight id %q: %w", id, err)
	}
	if err := h.Candidate.Kind.UnmarshalText([]byte(kind)); err != nil {
		return nil, err
	}
	return &h, nil
}

// InsertCard stores a new flashcard with its scheduling state.
func (db *DB) InsertCard(card domain.Flashcard) error {
	var sourceHighlight sql.NullString
	if card.SourceHighlightID != nil {
		sourceHighlight = sql.NullString{String: card.SourceHighlightID.String(), Valid: true}
	}
	_, err := db.conn.Exec(`
		INSERT INTO flashcards (id, front_text, back_text, source_highlight_id, ease_factor, interval_days, next_review, review_count, correct_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		card.ID.String(),
		card.FrontText,
		card.BackText,
		sourceHighlight,
		card.EaseFactor,
		card.Interval,
		card.NextReview,
		card.ReviewCount,
		card.CorrectCount,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
	}
	return nil
}

// FindCardByID retrieves a flashcard by id. Returns nil when no card matches.
func (db *DB) FindCardByID(id uuid.UUID) (*domain.Flashcard, error) {
	row := db.conn.QueryRow(`
		SELECT id, front_text, back_text, source_highlight_id, ease_factor, interval_days, next_review, review_count, correct_count, created_at
		FROM flashcards WHERE id = ?
	`, id.String())

	card, err := scanCard(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return card, nil
}

// UpdateCardSchedule persists the scheduling fields after a review.
func (db *DB) UpdateCardSchedule(card domain.Flashcard) error {
	_, err := db.conn.Exec(`
		UPDATE flashcards
		SET ease_factor = ?, interval_days = ?, next_review = ?, review_count = ?, correct_count = ?
		WHERE id = ?
	`,
		card.EaseFactor,
		card.Interval,
		card.NextReview,
		card.ReviewCount,
		card.CorrectCount,
		card.ID.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update schedule for card %s: %w", card.ID, err)
	}
	return nil
}

// GetDueCards retrieves cards due at the given instant, most overdue first.
func (db *DB) GetDueCards(now time.Time) ([]domain.Flashcard, error) {
	rows, err := db.conn.Query(`
		SELECT id, front_text, back_text, source_highlight_id, ease_factor, interval_days, next_review, review_count, correct_count, created_at
		FROM flashcards WHERE next_review <= ? ORDER BY next_review ASC
	`, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

// GetAllCards retrieves every stored flashcard.
func (db *DB) GetAllCards() ([]domain.Flashcard, error) {
	rows, err := db.conn.Query(`
		SELECT id, front_text, back_text, source_highlight_id, ease_factor, interval_days, next_review, review_count, correct_count, created_at
		FROM flashcards
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all cards: %w", err)
	}
	defer rows.Close()

	return collectCards(rows)
}

func collectCards(rows *sql.Rows) ([]domain.Flashcard, error) {
	var cards []domain.Flashcard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		cards = append(cards, *card)
	}
	return cards, rows.Err()
}

func scanCard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	var id string
	var sourceHighlight sql.NullString
	err := row.Scan(
		&id,
		&card.FrontText,
		&card.BackText,
		&sourceHighlight,
		&card.EaseFactor,
		&card.Interval,
		&card.NextReview,
		&card.ReviewCount,
		&card.CorrectCount,
		&card.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if card.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("bad card id %q: %w", id, err)
	}
	if sourceHighlight.Valid {
		hid, err := uuid.Parse(sourceHighlight.String)
		if err != nil {
			return nil, fmt.Errorf("bad source highlight id %q: %w", sourceHighlight.String, err)
		}
		card.SourceHighlightID = &hid
	}
	return &card, nil
}

// Source represents a place study material comes from, either a local path
// or a Git URL.
type Source struct {
	ID          int64
	Path        string
	Type        string // "local" or "git"
	LastScanned sql.NullTime
}

// InsertSource inserts a new source and returns its ID.
func (db *DB) InsertSource(path, sourceType string) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO sources (path, type)
		VALUES (?, ?)
	`, path, sourceType)
	if err != nil {
		return 0, fmt.Errorf("failed to insert source %s: %w", path, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for source %s: %w", path, err)
	}
	return id, nil
}

// FindSourceByPath retrieves a source by its path. Returns nil when no
// source matches.
func (db *DB) FindSourceByPath(path string) (*Source, error) {
	var s Source
	row := db.conn.QueryRow(`
		SELECT id, path, type, last_scanned
		FROM sources WHERE path = ?
	`, path)

	err := row.Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find source by path %s: %w", path, err)
	}
	return &s, nil
}

// GetAllSources retrieves all stored sources.
func (db *DB) GetAllSources() ([]Source, error) {
	rows, err := db.conn.Query(`
		SELECT id, path, type, last_scanned
		FROM sources
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var s Source
		if err := rows.Scan(&s.ID, &s.Path, &s.Type, &s.LastScanned); err != nil {
			return nil, fmt.Errorf("failed to scan source row: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// DeleteSource removes a source along with its highlights and their cards.
func (db *DB) DeleteSource(id int64) error {
	highlights, err := db.GetHighlightsBySourceID(id)
	if err != nil {
		return err
	}
	for _, h := range highlights {
		if err := db.DeleteHighlight(h.Candidate.ID); err != nil {
			return err
		}
	}
	if _, err := db.conn.Exec(`DELETE FROM sources WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete source %d: %w", id, err)
	}
	return nil
}

// UpdateSourceLastScanned updates the last_scanned timestamp for a source.
func (db *DB) UpdateSourceLastScanned(sourceID int64) error {
	_, err := db.conn.Exec(`
		UPDATE sources
		SET last_scanned = ?
		WHERE id = ?
	`, time.Now(), sourceID)
	if err != nil {
		return fmt.Errorf("failed to update last scanned for source ID %d: %w", sourceID, err)
	}
	return nil
}
