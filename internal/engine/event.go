package engine

import (
	"time"

	"github.com/framelock/capture-engine/internal/geometry"
	"github.com/framelock/capture-engine/internal/liveness"
	"github.com/framelock/capture-engine/internal/overlay"
)

// Event is the per-tick report. Hosts switch on the concrete type:
// DetectionUpdate, CaptureReady, ModelFailure, or NoOp.
type Event interface {
	isEvent()
}

// NoOp reports a tick that could not be processed, such as a frame with
// no pixels or a tick after Close.
type NoOp struct{}

func (NoOp) isEvent() {}

// DetectionUpdate carries the state both pipelines reached this tick,
// plus the overlay command the host should draw.
type DetectionUpdate struct {
	Document DocumentStatus
	// Liveness is nil on ticks without landmark data.
	Liveness *liveness.Status
	Overlay  overlay.Command
}

func (DetectionUpdate) isEvent() {}

// CaptureReady hands a finished capture to the host. The buffer is
// transient: the engine keeps no reference after emitting it.
type CaptureReady struct {
	Buffer *CaptureBuffer
}

func (CaptureReady) isEvent() {}

// ModelFailure reports that the landmark model never became ready
// within the initialization timeout. It is emitted exactly once per
// engine; automated liveness is dead afterwards and only ManualCapture
// remains.
type ModelFailure struct {
	Err error
}

func (ModelFailure) isEvent() {}

// DocumentStatus describes the document pipeline after one tick.
type DocumentStatus struct {
	// Analyzed reports whether full detection ran this tick; on skipped
	// ticks only the smoothed overlay is refreshed.
	Analyzed bool `json:"analyzed"`

	// Found reports whether the finder produced a candidate quad.
	Found bool `json:"found"`

	// Quality is the candidate's score in [0,1]; zero when not found.
	Quality float64 `json:"quality"`

	// Stable reports the tracker's verdict for this tick.
	Stable bool `json:"stable"`

	// Counter is the tracker's consecutive-acceptance count.
	Counter int `json:"counter"`

	// Outline is the smoothed quad for drawing, nil before the first
	// accepted detection.
	Outline *geometry.Quad `json:"outline,omitempty"`

	// Captured reports whether a document capture has already fired
	// this session.
	Captured bool `json:"captured"`
}

// CaptureKind tags what a CaptureBuffer holds.
type CaptureKind string

const (
	KindDocument CaptureKind = "document"
	KindFace     CaptureKind = "face"
)

// CaptureBuffer is one encoded capture on its way to the upload sink.
type CaptureBuffer struct {
	Data []byte `json:"-"`

	Kind CaptureKind `json:"kind"`

	// DocumentType is the classifier's tag ("passport", "id-card");
	// empty when no classifier is configured or it could not decide.
	DocumentType string `json:"document_type,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	// SessionID groups the captures of one verification session.
	SessionID string `json:"session_id"`

	CapturedAt time.Time `json:"captured_at"`
}
