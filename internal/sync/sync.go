// Package sync reconciles configured sources with the highlight and
// flashcard store. Transcripts are parsed and scored; shared highlight
// packs are imported as collaborative highlights; highlights that vanish
// from their source are swept along with their cards.
package sync

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rishabhcli/CardGenie-sub007/internal/builder"
	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
	"github.com/rishabhcli/CardGenie-sub007/internal/excerpt"
	"github.com/rishabhcli/CardGenie-sub007/internal/gitsource"
	"github.com/rishabhcli/CardGenie-sub007/internal/highlight"
	"github.com/rishabhcli/CardGenie-sub007/internal/storage"
	"github.com/rishabhcli/CardGenie-sub007/internal/transcript"
)

// packSuffix marks shared highlight pack files inside a source.
const packSuffix = ".highlights.json"

// packEntry is one shared highlight in a pack file.
type packEntry struct {
	Excerpt string  `json:"excerpt"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Author  string  `json:"author,omitempty"`
}

// Runner reconciles sources against the store.
type Runner struct {
	db       *storage.DB
	scorer   *highlight.Scorer
	reposDir string
}

// NewRunner creates a Runner. reposDir is where git sources are mirrored.
func NewRunner(db *storage.DB, scorer *highlight.Scorer, reposDir string) *Runner {
	return &Runner{db: db, scorer: scorer, reposDir: reposDir}
}

// Run iterates over all sources and reconciles them. Per-source failures
// are logged and skipped so one broken source cannot stall the rest.
func (r *Runner) Run() error {
	slog.Info("Starting sync process for all sources")
	sources, err := r.db.GetAllSources()
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}

	if len(sources) == 0 {
		slog.Info("No sources configured. Add one with --add-source <path/or/url.git>")
		return nil
	}

	if err := os.MkdirAll(r.reposDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create repos directory: %w", err)
	}

	for _, source := range sources {
		slog.Info("Syncing source", "id", source.ID, "type", source.Type, "path", source.Path)

		sourceToReconcile := source

		if source.Type == "git" {
			localRepoPath, err := gitURLToLocalPath(r.reposDir, source.Path)
			if err != nil {
				slog.Error("Error determining local path for git repo", "url", source.Path, "error", err)
				continue
			}
			if err := gitsource.Sync(source.Path, localRepoPath); err != nil {
				slog.Error("Error syncing git repo", "url", source.Path, "error", err)
				continue
			}
			sourceToReconcile.Path = localRepoPath
		}

		r.reconcileLocalSource(&sourceToReconcile, source.ID)
	}
	slog.Info("Sync process complete")
	return nil
}

// reconcileLocalSource walks a source directory, imports every transcript
// and highlight pack it finds, and sweeps highlights no longer present.
func (r *Runner) reconcileLocalSource(source *storage.Source, sourceID int64) {
	foundHashes := make(map[string]bool)
	var imported, skipped int
	var importErrors []error

	walkErr := filepath.WalkDir(source.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := strings.ToLower(d.Name())
		switch {
		case strings.HasSuffix(name, packSuffix):
			n, s, packErrs := r.importPack(path, sourceID, foundHashes)
			imported, skipped = imported+n, skipped+s
			importErrors = append(importErrors, packErrs...)
		case strings.HasSuffix(name, ".srt"):
			n, s, srtErrs := r.importTranscript(path, sourceID, foundHashes)
			imported, skipped = imported+n, skipped+s
			importErrors = append(importErrors, srtErrs...)
		}
		return nil
	})

	if walkErr != nil {
		slog.Error("Error walking directory", "path", source.Path, "error", walkErr)
		return
	}

	orphaned := r.sweepOrphans(sourceID, foundHashes)

	if err := r.db.UpdateSourceLastScanned(sourceID); err != nil {
		slog.Warn("Failed to update last scanned for source", "source_id", sourceID, "error", err)
	}

	slog.Info("reconciliation complete",
		"path", source.Path,
		"imported", imported,
		"already_known", skipped,
		"orphaned_deleted", orphaned,
		"errors", len(importErrors),
	)
	for _, err := range importErrors {
		slog.Warn("import error", "error", err)
	}
}

// importTranscript scores every chunk of an SRT file and stores the
// accepted highlights, each with a freshly built flashcard.
func (r *Runner) importTranscript(path string, sourceID int64, foundHashes map[string]bool) (imported, skipped int, errs []error) {
	chunks, err := transcript.ParseFile(path)
	if err != nil {
		return 0, 0, []error{fmt.Errorf("parsing %s: %w", path, err)}
	}

	for _, chunk := range chunks {
		candidate := r.scorer.Evaluate(chunk)
		if candidate == nil {
			continue
		}
		n, s, err := r.storeCandidate(*candidate, "", sourceID, foundHashes)
		if err != nil {
			errs = append(errs, fmt.Errorf("storing highlight from %s: %w", path, err))
			continue
		}
		imported, skipped = imported+n, skipped+s
	}
	return imported, skipped, errs
}

// importPack imports a shared highlight pack as collaborative highlights.
// A malformed pack costs that one file, not the sync.
func (r *Runner) importPack(path string, sourceID int64, foundHashes map[string]bool) (imported, skipped int, errs []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, []error{fmt.Errorf("reading pack %s: %w", path, err)}
	}

	var entries []packEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return 0, 0, []error{fmt.Errorf("decoding pack %s: %w", path, err)}
	}

	for _, e := range entries {
		if strings.TrimSpace(e.Excerpt) == "" {
			continue
		}
		candidate := r.scorer.Collaborative(e.Excerpt, e.Start, e.End, e.Author)
		n, s, err := r.storeCandidate(candidate, e.Author, sourceID, foundHashes)
		if err != nil {
			errs = append(errs, fmt.Errorf("storing shared highlight from %s: %w", path, err))
			continue
		}
		imported, skipped = imported+n, skipped+s
	}
	return imported, skipped, errs
}

// storeCandidate deduplicates by content hash and inserts the highlight
// plus its derived flashcard when new.
func (r *Runner) storeCandidate(candidate domain.HighlightCandidate, author string, sourceID int64, foundHashes map[string]bool) (imported, skipped int, err error) {
	hash := excerpt.Hash(candidate.Excerpt, candidate.StartTime, candidate.EndTime)
	foundHashes[hash] = true

	existing, err := r.db.FindHighlightByHash(hash)
	if err != nil {
		return 0, 0, err
	}
	if existing != nil {
		return 0, 1, nil
	}

	now := time.Now()
	stored := storage.Highlight{
		Candidate:   candidate,
		ContentHash: hash,
		SourceID:    sql.NullInt64{Int64: sourceID, Valid: true},
		CreatedAt:   now,
	}
	if author != "" {
		stored.Author = sql.NullString{String: author, Valid: true}
	}
	if err := r.db.InsertHighlight(stored); err != nil {
		return 0, 0, err
	}

	card := builder.Build(candidate, now)
	if err := r.db.InsertCard(card); err != nil {
		return 0, 0, err
	}

	slog.Info("New highlight imported", "id", candidate.ID, "kind", candidate.Kind, "confidence", candidate.Confidence)
	return 1, 0, nil
}

// sweepOrphans deletes this source's highlights whose content hash was not
// seen during the walk, along with the cards built from them.
func (r *Runner) sweepOrphans(sourceID int64, foundHashes map[string]bool) int {
	stored, err := r.db.GetHighlightsBySourceID(sourceID)
	if err != nil {
		slog.Error("Error getting highlights for source", "source_id", sourceID, "error", err)
		return 0
	}

	var orphaned int
	for _, h := range stored {
		if foundHashes[h.ContentHash] {
			continue
		}
		slog.Info("Orphaned highlight, deleting", "id", h.Candidate.ID)
		if err := r.db.DeleteHighlight(h.Candidate.ID); err != nil {
			slog.Warn("Failed to delete orphaned highlight", "id", h.Candidate.ID, "error", err)
			continue
		}
		orphaned++
	}
	return orphaned
}

// gitURLToLocalPath maps a git URL to a stable on-disk mirror location.
func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
