// Package transcript parses SubRip (.srt) transcript files into ordered
// chunks suitable for highlight scoring. Cues are merged at sentence
// boundaries so each chunk carries a complete thought rather than a caption
// fragment.
package transcript

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rishabhcli/CardGenie-sub007/internal/domain"
)

// frame is one raw caption line with the timing of its cue.
type frame struct {
	text  string
	start float64
	end   float64
}

// ParseFile reads an SRT file from the given path and extracts all chunks.
func ParseFile(path string) ([]domain.TranscriptChunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads SRT content from r and extracts all chunks. Malformed cue
// lines are skipped rather than aborting the parse; a transcript is a
// best-effort input and a broken cue costs one caption, not the file.
func Parse(r io.Reader) ([]domain.TranscriptChunk, error) {
	scanner := bufio.NewScanner(r)
	var frames []frame
	var curStart, curEnd float64
	haveCue := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		// Sequence numbers separate cues; the timing line carries all
		// the information we need.
		if isDigitOnly(line) {
			continue
		}

		if strings.Contains(line, "-->") {
			start, end, ok := parseCueTiming(line)
			if ok {
				curStart, curEnd = start, end
				haveCue = true
			}
			continue
		}

		if !haveCue {
			continue
		}
		frames = append(frames, frame{text: line, start: curStart, end: curEnd})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return mergeSentences(frames), nil
}

// mergeSentences joins consecutive frames until one ends a sentence, then
// emits a chunk spanning from the first frame's start to the last frame's
// end. A trailing fragment without a terminator still becomes a chunk.
func mergeSentences(frames []frame) []domain.TranscriptChunk {
	var chunks []domain.TranscriptChunk
	var b strings.Builder
	var start, end float64
	open := false

	flush := func() {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, domain.TranscriptChunk{
			Text:       b.String(),
			Range:      domain.TimestampRange{Start: start, End: end},
			ChunkIndex: len(chunks),
		})
		b.Reset()
		open = false
	}

	for _, f := range frames {
		if !open {
			start = f.start
			open = true
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(f.text)
		end = f.end

		if endsSentence(f.text) {
			flush()
		}
	}
	flush()

	return chunks
}

func endsSentence(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasSuffix(trimmed, ".") ||
		strings.HasSuffix(trimmed, "!") ||
		strings.HasSuffix(trimmed, "?")
}

// parseCueTiming parses "HH:MM:SS,mmm --> HH:MM:SS,mmm" into float seconds.
func parseCueTiming(line string) (start, end float64, ok bool) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, okStart := parseTimecode(strings.TrimSpace(parts[0]))
	end, okEnd := parseTimecode(strings.TrimSpace(parts[1]))
	if !okStart || !okEnd {
		return 0, 0, false
	}
	return start, end, true
}

// parseTimecode converts an SRT timecode to seconds. Both the SRT comma and
// the WebVTT dot are accepted as the millisecond separator.
func parseTimecode(tc string) (float64, bool) {
	tc = strings.ReplaceAll(tc, ",", ".")
	fields := strings.Split(tc, ":")
	if len(fields) != 3 {
		return 0, false
	}

	hours, err := strconv.Atoi(fields[0])
	if err != nil || hours < 0 {
		return 0, false
	}
	minutes, err := strconv.Atoi(fields[1])
	if err != nil || minutes < 0 {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(fields[2], 64)
	if err != nil || seconds < 0 {
		return 0, false
	}

	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

// isDigitOnly reports whether s consists solely of ASCII digits.
func isDigitOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
