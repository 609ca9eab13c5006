package landmark

import (
	"bufio"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"strings"
)

// ReplaySource replays a recorded landmark stream in place of a live
// detector: one JSON Result per line, delivered in order. The frame image
// is ignored. Once the recording is exhausted every further call reports
// no face, matching a subject who walked away.
type ReplaySource struct {
	frames []Result
	next   int
}

// NewReplaySource parses a JSONL landmark recording. Blank lines are
// skipped; a malformed line fails with its line number.
func NewReplaySource(r io.Reader) (*ReplaySource, error) {
	var frames []Result
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var res Result
		if err := json.Unmarshal([]byte(text), &res); err != nil {
			return nil, fmt.Errorf("landmark replay line %d: %w", line, err)
		}
		frames = append(frames, res)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading landmark replay: %w", err)
	}
	return &ReplaySource{frames: frames}, nil
}

// NewReplayFile opens and parses a JSONL landmark recording from disk.
func NewReplayFile(path string) (*ReplaySource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening landmark replay: %w", err)
	}
	defer f.Close()
	return NewReplaySource(f)
}

// Landmarks returns the next recorded frame, or a no-face result once the
// recording is exhausted.
func (s *ReplaySource) Landmarks(image.Image) (*Result, error) {
	if s.next >= len(s.frames) {
		return &Result{}, nil
	}
	res := s.frames[s.next]
	s.next++
	return &res, nil
}

// Len returns the total number of recorded frames.
func (s *ReplaySource) Len() int {
	return len(s.frames)
}

// Remaining returns how many recorded frames have not been delivered yet.
func (s *ReplaySource) Remaining() int {
	return len(s.frames) - s.next
}

// Close implements Source. The replay holds no resources.
func (s *ReplaySource) Close() error {
	return nil
}
