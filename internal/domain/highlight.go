package domain

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// TimestampRange is a span of audio time in seconds. End is not required to
// be at or after Start; degenerate ranges pass through unchanged.
type TimestampRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End minus Start in seconds. May be negative for a
// degenerate range.
func (r TimestampRange) Duration() float64 {
	return r.End - r.Start
}

// TranscriptChunk is one unit of transcribed speech emitted by a
// transcription stream. Embedding is optional and plays no part in
// highlight scoring.
type TranscriptChunk struct {
	Text       string         `json:"text"`
	Range      TimestampRange `json:"range"`
	ChunkIndex int            `json:"chunk_index"`
	Embedding  []float32      `json:"embedding,omitempty"`
}

// HighlightKind records how a highlight came to exist.
type HighlightKind int

const (
	Automatic     HighlightKind = iota + 1 // Detected by the scorer.
	Manual                                 // Marked by the user.
	Collaborative                          // Received from a peer.
)

var (
	kindNames = [...]string{Automatic: "Automatic", Manual: "Manual", Collaborative: "Collaborative"}

	kindByName = map[string]HighlightKind{
		"Automatic":     Automatic,
		"Manual":        Manual,
		"Collaborative": Collaborative,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = HighlightKind(0)
	_ encoding.TextMarshaler   = HighlightKind(0)
	_ encoding.TextUnmarshaler = (*HighlightKind)(nil)
)

func (k HighlightKind) isValid() bool {
	return k >= Automatic && k <= Collaborative
}

// String returns the name of the kind. For invalid values it returns
// "HighlightKind(n)".
func (k HighlightKind) String() string {
	if k.isValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("HighlightKind(%d)", int(k))
}

// MarshalText implements encoding.TextMarshaler.
func (k HighlightKind) MarshalText() ([]byte, error) {
	if !k.isValid() {
		return nil, fmt.Errorf("invalid highlight kind: %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *HighlightKind) UnmarshalText(text []byte) error {
	v, ok := kindByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid highlight kind: %q", text)
	}
	*k = v
	return nil
}

// MarshalJSON implements json.Marshaler. HighlightKind serializes as a
// JSON string.
func (k HighlightKind) MarshalJSON() ([]byte, error) {
	text, err := k.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (k *HighlightKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid highlight kind: %s", data)
	}
	return k.UnmarshalText([]byte(s))
}

// HighlightCandidate is an excerpt of transcribed speech flagged as a
// candidate source for a flashcard. Candidates are immutable once produced;
// in particular Confidence is never recomputed after creation.
type HighlightCandidate struct {
	ID         uuid.UUID     `json:"id"`
	StartTime  float64       `json:"start_time"`
	EndTime    float64       `json:"end_time"`
	Excerpt    string        `json:"excerpt"`
	Summary    string        `json:"summary"`
	Confidence float64       `json:"confidence"`
	Kind       HighlightKind `json:"kind"`
}
