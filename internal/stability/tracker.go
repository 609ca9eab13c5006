package stability

import (
	"github.com/framelock/capture-engine/internal/geometry"
)

// Config holds the thresholds and window sizes of the stability decision.
type Config struct {
	// AcceptQuality is the minimum detection quality for a frame to count
	// toward stability. Lower-quality frames decay the run.
	AcceptQuality float64 `json:"accept_quality"`

	// HighQuality marks detections good enough for the shorter hold.
	HighQuality float64 `json:"high_quality"`

	// HoldHighQuality and HoldNormal are the consecutive-frame counts
	// required before the document is considered stable.
	HoldHighQuality int `json:"hold_high_quality"`
	HoldNormal      int `json:"hold_normal"`

	// MaxJitter is the largest corner displacement, in pixels, between a
	// detection and the reference corners that still counts as the same
	// resting document. Zero or negative disables the check.
	MaxJitter float64 `json:"max_jitter"`

	// RefreshEvery re-anchors the reference corners after this many
	// counted frames, so a slowly drifting document is not eventually
	// rejected as jitter. Zero or negative disables refreshing.
	RefreshEvery int `json:"refresh_every"`

	// HistorySize bounds the ring of recent accepted detections.
	HistorySize int `json:"history_size"`

	// SmoothingAlpha is the EMA step for overlay corners: 0 freezes them,
	// 1 disables smoothing.
	SmoothingAlpha float64 `json:"smoothing_alpha"`
}

// DefaultConfig returns the production stability profile.
func DefaultConfig() Config {
	return Config{
		AcceptQuality:   0.65,
		HighQuality:     0.8,
		HoldHighQuality: 4,
		HoldNormal:      6,
		MaxJitter:       40,
		RefreshEvery:    3,
		HistorySize:     7,
		SmoothingAlpha:  0.3,
	}
}

// Sample is one accepted detection kept in the tracker history.
type Sample struct {
	Corners geometry.Quad `json:"corners"`
	Quality float64       `json:"quality"`
}

// Tracker accumulates consecutive acceptable detections until the document
// can be considered stable. Not safe for concurrent use; the engine drives
// it from a single tick goroutine.
type Tracker struct {
	cfg Config

	counter      int
	sinceRefresh int
	reference    *geometry.Quad
	smoothed     *geometry.Quad
	history      []Sample
}

// NewTracker builds a tracker, clamping degenerate window sizes.
func NewTracker(cfg Config) *Tracker {
	if cfg.HoldHighQuality < 1 {
		cfg.HoldHighQuality = 1
	}
	if cfg.HoldNormal < 1 {
		cfg.HoldNormal = 1
	}
	if cfg.HistorySize < 1 {
		cfg.HistorySize = 1
	}
	if cfg.SmoothingAlpha <= 0 || cfg.SmoothingAlpha > 1 {
		cfg.SmoothingAlpha = DefaultConfig().SmoothingAlpha
	}
	return &Tracker{cfg: cfg}
}

// Update feeds one frame's detection into the tracker and reports whether
// the document is stable as of this frame.
//
// A frame counts toward stability when corners are present, quality reaches
// the acceptance threshold, and the corners have not jumped further than
// MaxJitter from the reference. Any other frame decays the run by one,
// never below zero. Stability requires HoldHighQuality consecutive counted
// frames when the current quality reaches HighQuality, HoldNormal
// otherwise.
func (t *Tracker) Update(corners *geometry.Quad, quality float64) bool {
	if corners == nil || quality < t.cfg.AcceptQuality {
		t.decay()
		return false
	}

	t.observe(*corners, quality)

	if t.reference != nil && t.cfg.MaxJitter > 0 &&
		geometry.MaxCornerDistance(*corners, *t.reference) > t.cfg.MaxJitter {
		// The document jumped: re-anchor on the new position so a move to
		// a new resting spot can start counting again.
		t.setReference(*corners)
		t.decay()
		return false
	}

	if t.reference == nil {
		t.setReference(*corners)
	}

	t.counter++
	t.sinceRefresh++
	if t.cfg.RefreshEvery > 0 && t.sinceRefresh >= t.cfg.RefreshEvery {
		t.setReference(*corners)
	}

	return t.counter >= t.required(quality)
}

// Smoothed returns a copy of the EMA overlay corners, or nil before any
// detection has been accepted. The smoothed corners are for rendering only.
func (t *Tracker) Smoothed() *geometry.Quad {
	if t.smoothed == nil {
		return nil
	}
	s := *t.smoothed
	return &s
}

// Counter returns the current consecutive-frame count.
func (t *Tracker) Counter() int {
	return t.counter
}

// History returns the recent accepted detections, oldest first.
func (t *Tracker) History() []Sample {
	out := make([]Sample, len(t.history))
	copy(out, t.history)
	return out
}

// Reset clears all state. A reset tracker behaves identically to a freshly
// constructed one; call it after every completed capture and on explicit
// retry.
func (t *Tracker) Reset() {
	*t = Tracker{cfg: t.cfg}
}

func (t *Tracker) required(quality float64) int {
	if quality >= t.cfg.HighQuality {
		return t.cfg.HoldHighQuality
	}
	return t.cfg.HoldNormal
}

func (t *Tracker) decay() {
	if t.counter > 0 {
		t.counter--
	}
}

func (t *Tracker) setReference(corners geometry.Quad) {
	ref := corners
	t.reference = &ref
	t.sinceRefresh = 0
}

// observe records an accepted detection in the history ring and advances
// the overlay EMA toward it.
func (t *Tracker) observe(corners geometry.Quad, quality float64) {
	t.history = append(t.history, Sample{Corners: corners, Quality: quality})
	if len(t.history) > t.cfg.HistorySize {
		t.history = t.history[1:]
	}

	if t.smoothed == nil {
		s := corners
		t.smoothed = &s
		return
	}
	s := t.smoothed.Blend(corners, t.cfg.SmoothingAlpha)
	t.smoothed = &s
}
