// Package highlight decides which transcript excerpts are worth turning into
// study material. Automatic detection scores weighted textual signals;
// manual and collaborative highlights carry fixed confidences. Every
// operation is pure and best-effort: degenerate input produces a rejection
// or a placeholder, never an error.
package highlight

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// Fixed confidences for non-automatic highlights. A user marking a moment is
// trusted more than a peer's shared highlight, which in turn is trusted more
// than anything the scorer detects on its own.
const (
	ManualConfidence        = 0.9
	CollaborativeConfidence = 0.8
)

// manualWindowSeconds is the span of a user-initiated "mark this moment"
// highlight.
const manualWindowSeconds = 8.0

// Config holds the scorer's signal weights and thresholds. Use
// DefaultConfig as a starting point; all fields are externally adjustable.
type Config struct {
	// Keywords are matched case-insensitively; each distinct hit adds
	// KeywordWeight, up to MaxKeywordHits hits.
	Keywords      []string `koanf:"keywords"`
	KeywordWeight float64  `koanf:"keyword_weight" validate:"gte=0"`
	MaxKeywordHits int     `koanf:"max_keyword_hits" validate:"gte=1"`

	// Emphasis characters add EmphasisWeight per occurrence, up to
	// MaxEmphasisHits occurrences.
	Emphasis        string  `koanf:"emphasis"`
	EmphasisWeight  float64 `koanf:"emphasis_weight" validate:"gte=0"`
	MaxEmphasisHits int     `koanf:"max_emphasis_hits" validate:"gte=1"`

	// MinTextLength rejects chunks outright before any scoring.
	MinTextLength int `koanf:"min_text_length" validate:"gte=1"`

	// BaseConfidence is the starting score before bonuses. It must sit at
	// or below AcceptThreshold so signal-free prose never passes.
	BaseConfidence float64 `koanf:"base_confidence" validate:"gte=0,lte=1"`

	// LengthBonus is added once when the text exceeds LengthThreshold
	// characters.
	LengthBonus     float64 `koanf:"length_bonus" validate:"gte=0"`
	LengthThreshold int     `koanf:"length_threshold" validate:"gte=1"`

	// AcceptThreshold rejects candidates whose confidence is at or below
	// it. ConfidenceCap bounds the final score, leaving headroom for the
	// fixed manual and collaborative confidences.
	AcceptThreshold float64 `koanf:"accept_threshold" validate:"gte=0,lte=1"`
	ConfidenceCap   float64 `koanf:"confidence_cap" validate:"gt=0,lte=1"`
}

// DefaultConfig returns the stock signal model.
func DefaultConfig() Config {
	return Config{
		Keywords: []string{
			"important", "key", "remember", "critical", "definition",
			"essential", "therefore", "conclusion", "in summary", "note that",
		},
		KeywordWeight:   0.12,
		MaxKeywordHits:  3,
		Emphasis:        "!?",
		EmphasisWeight:  0.10,
		MaxEmphasisHits: 2,
		MinTextLength:   40,
		BaseConfidence:  0.40,
		LengthBonus:     0.10,
		LengthThreshold: 180,
		AcceptThreshold: 0.50,
		ConfidenceCap:   0.95,
	}
}

// Scorer evaluates transcript chunks against a fixed Config. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer with the given config. Zero-valued configs are
// replaced with DefaultConfig.
func NewScorer(cfg Config) *Scorer {
	if cfg.Keywords == nil && cfg.KeywordWeight == 0 && cfg.MinTextLength == 0 {
		cfg = DefaultConfig()
	}
	return &Scorer{cfg: cfg}
}

// Evaluate scores a chunk and returns a highlight candidate when the text
// carries enough signal, or nil when it does not. Evaluate never fails:
// unpromising input is simply rejected.
func (s *Scorer) Evaluate(chunk domain.TranscriptChunk) *domain.HighlightCandidate {
	text := strings.TrimSpace(chunk.Text)
	if len(text) < s.cfg.MinTextLength {
		return nil
	}

	confidence := s.cfg.BaseConfidence + s.keywordSignal(text) + s.emphasisSignal(text)
	if len(text) > s.cfg.LengthThreshold {
		confidence += s.cfg.LengthBonus
	}
	if confidence > s.cfg.ConfidenceCap {
		confidence = s.cfg.ConfidenceCap
	}

	if confidence <= s.cfg.AcceptThreshold {
		return nil
	}

	return &domain.HighlightCandidate{
		ID:         uuid.New(),
		StartTime:  chunk.Range.Start,
		EndTime:    chunk.Range.End,
		Excerpt:    chunk.Text,
		Summary:    Summarize(text),
		Confidence: confidence,
		Kind:       domain.Automatic,
	}
}

// keywordSignal counts distinct configured keywords present in the text,
// capped so stacked keywords cannot dominate the score.
func (s *Scorer) keywordSignal(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range s.cfg.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			hits++
			if hits >= s.cfg.MaxKeywordHits {
				break
			}
		}
	}
	return float64(hits) * s.cfg.KeywordWeight
}

// emphasisSignal counts emphasis punctuation occurrences up to the cap.
func (s *Scorer) emphasisSignal(text string) float64 {
	hits := 0
	for _, r := range text {
		if strings.ContainsRune(s.cfg.Emphasis, r) {
			hits++
			if hits >= s.cfg.MaxEmphasisHits {
				break
			}
		}
	}
	return float64(hits) * s.cfg.EmphasisWeight
}

// Manual creates a highlight for a user-initiated mark at the given
// timestamp. It always succeeds: an empty transcript yields a placeholder
// excerpt naming the moment in MM:SS form.
func (s *Scorer) Manual(transcript string, at float64) domain.HighlightCandidate {
	excerpt := strings.TrimSpace(transcript)
	if excerpt == "" {
		excerpt = fmt.Sprintf("Highlight at %s", FormatTimestamp(at))
	}
	return domain.HighlightCandidate{
		ID:         uuid.New(),
		StartTime:  at,
		EndTime:    at + manualWindowSeconds,
		Excerpt:    excerpt,
		Summary:    Summarize(excerpt),
		Confidence: ManualConfidence,
		Kind:       domain.Manual,
	}
}

// Collaborative creates a highlight received from a peer. The summary is
// prefixed with the author's name when one is known; an empty author leaves
// the summary unattributed.
func (s *Scorer) Collaborative(excerpt string, start, end float64, author string) domain.HighlightCandidate {
	summary := Summarize(strings.TrimSpace(excerpt))
	if author != "" {
		summary = fmt.Sprintf("%s: %s", author, summary)
	}
	return domain.HighlightCandidate{
		ID:         uuid.New(),
		StartTime:  start,
		EndTime:    end,
		Excerpt:    excerpt,
		Summary:    summary,
		Confidence: CollaborativeConfidence,
		Kind:       domain.Collaborative,
	}
}
