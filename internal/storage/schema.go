package storage

const schema = `
-- Flashcards own their spaced-repetition scheduling state. A card may link
-- back to the highlight it was built from (one-directional ownership).
CREATE TABLE IF NOT EXISTS flashcards (
    id TEXT PRIMARY KEY,
    front_text TEXT NOT NULL,
    back_text TEXT NOT NULL,
    source_highlight_id TEXT,
    ease_factor REAL NOT NULL,
    interval_days INTEGER NOT NULL,
    next_review DATETIME NOT NULL,
    review_count INTEGER NOT NULL DEFAULT 0,
    correct_count INTEGER NOT NULL DEFAULT 0,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(source_highlight_id) REFERENCES highlights(id)
);

-- Highlights are immutable once stored; content_hash deduplicates repeated
-- syncs of the same source material.
CREATE TABLE IF NOT EXISTS highlights (
    id TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL UNIQUE,
    excerpt TEXT NOT NULL,
    summary TEXT NOT NULL,
    start_time REAL NOT NULL,
    end_time REAL NOT NULL,
    confidence REAL NOT NULL,
    kind TEXT NOT NULL,
    author TEXT,
    source_id INTEGER,
    created_at DATETIME NOT NULL,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

-- Sources are the places transcripts and shared highlight packs come from:
-- a local directory or a git repository.
CREATE TABLE IF NOT EXISTS sources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,
    type TEXT NOT NULL DEFAULT 'local',
    last_scanned DATETIME
);
`
