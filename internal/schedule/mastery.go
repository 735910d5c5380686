package schedule

import (
	"encoding"
	"encoding/json"
	"fmt"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// DefaultMasteryCeilingDays is the interval at which a card contributes its
// maximum weight to deck mastery. It matches the Mastered threshold.
const DefaultMasteryCeilingDays = 180

// Level bands a card's retention strength by its review interval.
type Level int

const (
	Learning   Level = iota + 1 // interval under 7 days
	Developing                  // 7 to 29 days
	Proficient                  // 30 to 179 days
	Mastered                    // 180 days or more
)

var (
	levelNames = [...]string{Learning: "Learning", Developing: "Developing", Proficient: "Proficient", Mastered: "Mastered"}

	levelByName = map[string]Level{
		"Learning":   Learning,
		"Developing": Developing,
		"Proficient": Proficient,
		"Mastered":   Mastered,
	}
)

// Compile-time interface checks.
var (
	_ fmt.Stringer             = Level(0)
	_ encoding.TextMarshaler   = Level(0)
	_ encoding.TextUnmarshaler = (*Level)(nil)
)

// LevelOf classifies an interval in days. It is a pure function of the
// interval, so it can never drift from the card's stored scheduling state.
func LevelOf(intervalDays int) Level {
	switch {
	case intervalDays < 7:
		return Learning
	case intervalDays < 30:
		return Developing
	case intervalDays < DefaultMasteryCeilingDays:
		return Proficient
	default:
		return Mastered
	}
}

func (l Level) isValid() bool {
	return l >= Learning && l <= Mastered
}

// String returns the name of the level. For invalid values it returns
// "Level(n)".
func (l Level) String() string {
	if l.isValid() {
		return levelNames[l]
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	if !l.isValid() {
		return nil, fmt.Errorf("invalid mastery level: %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Level) UnmarshalText(text []byte) error {
	v, ok := levelByName[string(text)]
	if !ok {
		return fmt.Errorf("invalid mastery level: %q", text)
	}
	*l = v
	return nil
}

// MarshalJSON implements json.Marshaler. Level serializes as a JSON string.
func (l Level) MarshalJSON() ([]byte, error) {
	text, err := l.MarshalText()
	if err != nil {
		return nil, err
	}
	return json.Marshal(string(text))
}

// UnmarshalJSON implements json.Unmarshaler. Expects a JSON string.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid mastery level: %s", data)
	}
	return l.UnmarshalText([]byte(s))
}

// ComputeMastery returns a 0-100 percentage describing how far the deck has
// progressed toward being study-ready.
//
// Raw mastery weighs each card by its interval, capped at the mastery
// ceiling: 100 × Σ min(interval, ceiling) / (ceiling × count). A ceiling of
// zero or less falls back to DefaultMasteryCeilingDays.
//
// When targetPercent is positive the result is scaled to progress toward
// that target, capped at 100. With targetPercent ≤ 0 the raw percentage is
// returned. An empty deck reports 0.
func ComputeMastery(cards []domain.Flashcard, targetPercent float64, ceilingDays int) float64 {
	if len(cards) == 0 {
		return 0
	}
	if ceilingDays <= 0 {
		ceilingDays = DefaultMasteryCeilingDays
	}

	var sum float64
	for _, c := range cards {
		ivl := c.Interval
		if ivl > ceilingDays {
			ivl = ceilingDays
		}
		if ivl < 0 {
			ivl = 0
		}
		sum += float64(ivl)
	}
	raw := 100 * sum / (float64(ceilingDays) * float64(len(cards)))

	if targetPercent <= 0 {
		return raw
	}
	progress := 100 * raw / targetPercent
	if progress > 100 {
		progress = 100
	}
	return progress
}

// LevelCounts tallies cards per mastery level. Missing levels are present
// with a zero count so callers can render all four bands.
func LevelCounts(cards []domain.Flashcard) map[Level]int {
	counts := map[Level]int{
		Learning:   0,
		Developing: 0,
		Proficient: 0,
		Mastered:   0,
	}
	for _, c := range cards {
		counts[LevelOf(c.Interval)]++
	}
	return counts
}
