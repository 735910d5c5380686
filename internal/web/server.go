// Package web exposes the review workflow over a local JSON HTTP API.
package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rishabhcli/CardGenie-sub007/internal/config"
	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
	"github.com/rishabhcli/CardGenie-sub007/internal/highlight"
	"github.com/rishabhcli/CardGenie-sub007/internal/schedule"
	"github.com/rishabhcli/CardGenie-sub007/internal/storage"
	"github.com/rishabhcli/CardGenie-sub007/internal/sync"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	db     *storage.DB
	router *http.ServeMux
	scorer *highlight.Scorer
	syncer *sync.Runner
	cfg    config.Config
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, cfg config.Config) *Server {
	scorer := highlight.NewScorer(cfg.Scorer)
	s := &Server{
		db:     db,
		router: http.NewServeMux(),
		scorer: scorer,
		syncer: sync.NewRunner(db, scorer, cfg.ReposDir),
		cfg:    cfg,
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// routes sets up the routing for the server.
func (s *Server) routes() {
	s.router.HandleFunc("/cards/due", s.handleGetDueCards())
	s.router.HandleFunc("/cards/", s.handlePostReview())
	s.router.HandleFunc("/mastery", s.handleGetMastery())
	s.router.HandleFunc("/highlights", s.handleHighlights())
	s.router.HandleFunc("/highlights/manual", s.handlePostManualHighlight())
	s.router.HandleFunc("/sources", s.handleSources())
	s.router.HandleFunc("/sources/", s.handleDeleteSource())
	s.router.HandleFunc("/sync", s.handlePostSync())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleGetDueCards returns the due queue, most overdue first.
func (s *Server) handleGetDueCards() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cards, err := s.db.GetDueCards(time.Now())
		if err != nil {
			slog.Error("Error getting due cards", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if cards == nil {
			cards = []domain.Flashcard{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"due_count": len(cards),
			"cards":     cards,
		})
	}
}

type reviewRequest struct {
	Rating domain.Rating `json:"rating"`
}

// handlePostReview applies a review to a card: load, schedule, persist.
// A card whose stored scheduling state is corrupt yields 422 so the client
// can surface a data-integrity warning instead of silently rescheduling.
func (s *Server) handlePostReview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		rest := strings.TrimPrefix(r.URL.Path, "/cards/")
		idStr, ok := strings.CutSuffix(rest, "/review")
		if !ok {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		id, err := uuid.Parse(idStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid card ID")
			return
		}

		var req reviewRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid rating")
			return
		}

		card, err := s.db.FindCardByID(id)
		if err != nil {
			slog.Error("Error loading card for review", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if card == nil {
			writeError(w, http.StatusNotFound, "card not found")
			return
		}

		updated, err := schedule.ScheduleNext(*card, req.Rating, time.Now())
		if errors.Is(err, schedule.ErrInvalidCardState) {
			slog.Warn("Card has corrupt scheduling state", "id", id, "error", err)
			writeError(w, http.StatusUnprocessableEntity,
				"card scheduling state is corrupt; review history was not modified")
			return
		}
		if errors.Is(err, domain.ErrInvalidRating) {
			writeError(w, http.StatusBadRequest, "invalid rating")
			return
		}
		if err != nil {
			slog.Error("Error scheduling review", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		if err := s.db.UpdateCardSchedule(updated); err != nil {
			slog.Error("Error persisting review", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"card":  updated,
			"level": schedule.LevelOf(updated.Interval),
		})
	}
}

// handleGetMastery reports deck mastery as progress toward the configured
// target, plus the per-level card counts.
func (s *Server) handleGetMastery() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		cards, err := s.db.GetAllCards()
		if err != nil {
			slog.Error("Error getting cards for mastery", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		mastery := schedule.ComputeMastery(cards, s.cfg.TargetMasteryPercent, s.cfg.MasteryCeilingDays)
		levels := make(map[string]int, 4)
		for level, n := range schedule.LevelCounts(cards) {
			levels[level.String()] = n
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"mastery":    mastery,
			"target":     s.cfg.TargetMasteryPercent,
			"card_count": len(cards),
			"levels":     levels,
		})
	}
}

// handleHighlights lists stored highlights.
func (s *Server) handleHighlights() http.HandlerFunc {
	type item struct {
		domain.HighlightCandidate
		Author string `json:"author,omitempty"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		stored, err := s.db.GetAllHighlights()
		if err != nil {
			slog.Error("Error getting highlights", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		items := make([]item, 0, len(stored))
		for _, h := range stored {
			it := item{HighlightCandidate: h.Candidate}
			if h.Author.Valid {
				it.Author = h.Author.String
			}
			items = append(items, it)
		}
		writeJSON(w, http.StatusOK, map[string]any{"highlights": items})
	}
}

type manualHighlightRequest struct {
	Transcript string  `json:"transcript"`
	Timestamp  float64 `json:"timestamp"`
}

// handlePostManualHighlight records a user-initiated mark and builds a card
// from it immediately.
func (s *Server) handlePostManualHighlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		var req manualHighlightRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		candidate := s.scorer.Manual(req.Transcript, req.Timestamp)
		if err := s.storeManual(candidate); err != nil {
			slog.Error("Error storing manual highlight", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusCreated, candidate)
	}
}

// handleSources handles both GET and POST for the sources collection.
func (s *Server) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.handleGetSources(w, r)
		case http.MethodPost:
			s.handlePostSource(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

type sourceItem struct {
	ID          int64      `json:"id"`
	Path        string     `json:"path"`
	Type        string     `json:"type"`
	LastScanned *time.Time `json:"last_scanned,omitempty"`
}

func (s *Server) handleGetSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.db.GetAllSources()
	if err != nil {
		slog.Error("Error getting sources", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	items := make([]sourceItem, 0, len(sources))
	for _, src := range sources {
		it := sourceItem{ID: src.ID, Path: src.Path, Type: src.Type}
		if src.LastScanned.Valid {
			t := src.LastScanned.Time
			it.LastScanned = &t
		}
		items = append(items, it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": items})
}

type addSourceRequest struct {
	Path string `json:"path"`
}

func (s *Server) handlePostSource(w http.ResponseWriter, r *http.Request) {
	var req addSourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeError(w, http.StatusBadRequest, "path cannot be empty")
		return
	}

	id, err := s.db.InsertSource(req.Path, SourceType(req.Path))
	if err != nil {
		slog.Error("Error inserting new source", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add source")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// handleDeleteSource deletes a source with its highlights and cards.
func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		idStr := strings.TrimPrefix(r.URL.Path, "/sources/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid source ID")
			return
		}

		if err := s.db.DeleteSource(id); err != nil {
			slog.Error("Error deleting source", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete source")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	}
}

// handlePostSync triggers a sync in the foreground so the caller sees a
// settled store when the request returns.
func (s *Server) handlePostSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		if err := s.syncer.Run(); err != nil {
			slog.Error("Sync failed", "error", err)
			writeError(w, http.StatusInternalServerError, "sync failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// storeManual persists a manual highlight and its derived flashcard.
func (s *Server) storeManual(candidate domain.HighlightCandidate) error {
	return StoreHighlight(s.db, candidate, "")
}

// SourceType classifies a source path as local or git by its shape.
func SourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}
