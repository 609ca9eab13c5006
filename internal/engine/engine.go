package engine

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/framelock/capture-engine/internal/detection"
	"github.com/framelock/capture-engine/internal/geometry"
	"github.com/framelock/capture-engine/internal/landmark"
	"github.com/framelock/capture-engine/internal/liveness"
	"github.com/framelock/capture-engine/internal/overlay"
	"github.com/framelock/capture-engine/internal/rectify"
	"github.com/framelock/capture-engine/internal/stability"
)

var (
	// ErrModelInit reports that the landmark model never produced a
	// result within the initialization timeout. Automated liveness is
	// unavailable afterwards; manual capture stays open.
	ErrModelInit = errors.New("landmark model initialization timed out")

	// ErrCaptureFailed wraps rectification or encoding errors. The
	// capture lock is not taken on failure, so the next stable window
	// retries.
	ErrCaptureFailed = errors.New("capture failed")
)

// Config aggregates the tuning of every pipeline stage plus the
// engine's own knobs. Start from DefaultConfig; the zero value is not
// usable.
type Config struct {
	Detection detection.Config        `json:"detection"`
	Quality   detection.QualityConfig `json:"quality"`
	Stability stability.Config        `json:"stability"`
	Liveness  liveness.Config         `json:"liveness"`
	Rectify   rectify.Config          `json:"rectify"`

	// FrameSkip is the number of ticks between full document
	// detections: 2 means 1 of every 3 ticks is analyzed and the rest
	// only redraw the smoothed overlay.
	FrameSkip int `json:"frame_skip"`

	// CaptureQuality is the quality floor a stable detection must meet
	// before the document capture fires.
	CaptureQuality float64 `json:"capture_quality"`

	// Cooldown locks the document path after a successful capture,
	// until it expires or Reset is called.
	Cooldown time.Duration `json:"cooldown"`

	// ModelInitTimeout bounds how long the engine waits for the first
	// landmark result before declaring the model dead.
	ModelInitTimeout time.Duration `json:"model_init_timeout"`

	// TickInterval is the cadence of the Run loop.
	TickInterval time.Duration `json:"tick_interval"`
}

// DefaultConfig returns the production profile for all stages.
func DefaultConfig() Config {
	return Config{
		Detection:        detection.DefaultConfig(),
		Quality:          detection.DefaultQualityConfig(),
		Stability:        stability.DefaultConfig(),
		Liveness:         liveness.DefaultConfig(),
		Rectify:          rectify.DefaultConfig(),
		FrameSkip:        2,
		CaptureQuality:   0.7,
		Cooldown:         2500 * time.Millisecond,
		ModelInitTimeout: 8 * time.Second,
		TickInterval:     33 * time.Millisecond,
	}
}

// Classifier tags a rectified document from its encoded bytes. The
// doctext package provides one when built with OCR support.
type Classifier interface {
	Classify(jpegData []byte) (string, error)
}

// Frame is one camera frame. A zero Timestamp makes the engine fall
// back to its own clock.
type Frame struct {
	Image     image.Image
	Timestamp time.Time
}

// Option configures an Engine beyond its Config.
type Option func(*Engine)

// WithLogger replaces the default no-op logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClassifier attaches a document-type classifier consulted after
// each rectification.
func WithClassifier(c Classifier) Option {
	return func(e *Engine) { e.classifier = c }
}

// WithClock overrides the fallback clock used for frames without a
// timestamp.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// documentRectifier is the seam between the engine and the rectify
// package.
type documentRectifier interface {
	Rectify(img image.Image, corners geometry.Quad) (*rectify.Capture, error)
}

// Engine drives one capture session. Not safe for concurrent use; see
// the package comment.
type Engine struct {
	cfg        Config
	log        *zap.Logger
	now        func() time.Time
	classifier Classifier

	finder    *detection.Finder
	tracker   *stability.Tracker
	rectifier documentRectifier
	machine   *liveness.Machine

	session   string
	tickIndex uint64
	started   time.Time

	lastFrame     Frame
	lastLandmarks *landmark.Result
	lastFound     bool
	lastQuality   float64
	lastStable    bool

	docCaptured bool
	lockedUntil time.Time

	modelReady  bool
	modelFailed bool

	closeOnce sync.Once
	closed    chan struct{}
}

// New builds an Engine from cfg. FrameSkip below zero analyzes every
// tick; non-positive durations fall back to the defaults.
func New(cfg Config, opts ...Option) *Engine {
	if cfg.FrameSkip < 0 {
		cfg.FrameSkip = 0
	}
	if cfg.ModelInitTimeout <= 0 {
		cfg.ModelInitTimeout = 8 * time.Second
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 33 * time.Millisecond
	}

	e := &Engine{
		cfg:       cfg,
		log:       zap.NewNop(),
		now:       time.Now,
		finder:    detection.NewFinder(cfg.Detection),
		tracker:   stability.NewTracker(cfg.Stability),
		rectifier: rectify.NewRectifier(cfg.Rectify),
		machine:   liveness.NewMachine(cfg.Liveness),
		session:   uuid.NewString(),
		closed:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session returns the current session ID.
func (e *Engine) Session() string {
	return e.session
}

// Tick advances both pipelines by one frame. lm carries this frame's
// landmark result; nil means the provider had nothing, which before
// the first result counts against the initialization timeout.
func (e *Engine) Tick(frame Frame, lm *landmark.Result) []Event {
	if e.isClosed() || frame.Image == nil {
		return []Event{NoOp{}}
	}

	now := frame.Timestamp
	if now.IsZero() {
		now = e.now()
	}
	if e.started.IsZero() {
		e.started = now
	}

	e.lastFrame = frame
	e.lastLandmarks = lm

	if lm != nil && !e.modelReady {
		e.modelReady = true
		e.log.Info("landmark model ready", zap.String("session", e.session))
	}

	full := e.tickIndex%uint64(e.cfg.FrameSkip+1) == 0
	e.tickIndex++

	events := make([]Event, 0, 4)
	if failure := e.checkModelDeadline(now); failure != nil {
		events = append(events, *failure)
	}

	doc, docCapture := e.stepDocument(frame, now, full)
	lv, faceCapture := e.stepLiveness(frame, lm, now)

	events = append(events, DetectionUpdate{
		Document: doc,
		Liveness: lv,
		Overlay:  e.overlayCommand(doc, lv),
	})
	if docCapture != nil {
		events = append(events, CaptureReady{Buffer: docCapture})
	}
	if faceCapture != nil {
		events = append(events, CaptureReady{Buffer: faceCapture})
	}
	return events
}

// ManualCapture encodes the most recent frame as a face capture. The
// challenge machine re-validates the pose first, unless the landmark
// model failed, in which case the check is waived so the session can
// still finish.
func (e *Engine) ManualCapture() (*CaptureBuffer, error) {
	if e.lastFrame.Image == nil {
		return nil, errors.New("no frame seen yet")
	}
	if !e.modelFailed {
		ok, instr := e.machine.ValidateManualCapture(e.lastLandmarks)
		if !ok {
			return nil, fmt.Errorf("manual capture rejected: %s", instr)
		}
	}

	now := e.lastFrame.Timestamp
	if now.IsZero() {
		now = e.now()
	}
	buf, err := e.captureFace(e.lastFrame, now)
	if err != nil {
		return nil, err
	}
	e.log.Info("manual capture", zap.String("session", e.session))
	return buf, nil
}

// Reset starts a fresh session: new ID, cleared tracker, machine, and
// capture locks. Model state is kept; the model did not reload.
func (e *Engine) Reset() {
	e.session = uuid.NewString()
	e.tracker.Reset()
	e.machine.Reset()
	e.docCaptured = false
	e.lockedUntil = time.Time{}
	e.tickIndex = 0
	e.lastFound = false
	e.lastQuality = 0
	e.lastStable = false
	e.log.Info("session reset", zap.String("session", e.session))
}

// Close stops the engine. Safe to call repeatedly; Tick returns NoOp
// and Run exits after the first call.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.closed)
		e.log.Info("engine closed", zap.String("session", e.session))
	})
	return nil
}

func (e *Engine) isClosed() bool {
	select {
	case <-e.closed:
		return true
	default:
		return false
	}
}

func (e *Engine) checkModelDeadline(now time.Time) *ModelFailure {
	if e.modelReady || e.modelFailed {
		return nil
	}
	if now.Sub(e.started) < e.cfg.ModelInitTimeout {
		return nil
	}
	e.modelFailed = true
	e.log.Error("landmark model failed to initialize",
		zap.Duration("timeout", e.cfg.ModelInitTimeout))
	return &ModelFailure{Err: ErrModelInit}
}

// stepDocument runs detection on full ticks and the capture gate
// behind it. Skipped ticks reuse the last analysis so the overlay does
// not flicker between redraws.
func (e *Engine) stepDocument(frame Frame, now time.Time, full bool) (DocumentStatus, *CaptureBuffer) {
	doc := DocumentStatus{
		Analyzed: full,
		Found:    e.lastFound,
		Quality:  e.lastQuality,
		Stable:   e.lastStable,
		Captured: e.docCaptured,
	}
	if !full {
		doc.Outline = e.tracker.Smoothed()
		doc.Counter = e.tracker.Counter()
		return doc, nil
	}

	res, err := e.finder.Find(frame.Image)
	if err != nil || !res.Found {
		if err != nil {
			e.log.Warn("document detection failed", zap.Error(err))
		}
		e.tracker.Update(nil, 0)
		e.lastFound = false
		e.lastQuality = 0
		e.lastStable = false
		doc.Found = false
		doc.Quality = 0
		doc.Stable = false
		doc.Outline = e.tracker.Smoothed()
		doc.Counter = e.tracker.Counter()
		return doc, nil
	}

	bounds := frame.Image.Bounds()
	quality := detection.Quality(res.Corners, bounds.Dx(), bounds.Dy(), e.cfg.Quality)
	stable := e.tracker.Update(&res.Corners, quality)

	e.lastFound = true
	e.lastQuality = quality
	e.lastStable = stable
	doc.Found = true
	doc.Quality = quality
	doc.Stable = stable
	doc.Outline = e.tracker.Smoothed()
	doc.Counter = e.tracker.Counter()

	if !stable || quality < e.cfg.CaptureQuality || now.Before(e.lockedUntil) {
		return doc, nil
	}

	buf, err := e.captureDocument(frame, res.Corners, now)
	if err != nil {
		// No lock on failure: the next stable frame retries.
		e.log.Error("document capture failed", zap.Error(err))
		return doc, nil
	}
	e.docCaptured = true
	e.lockedUntil = now.Add(e.cfg.Cooldown)
	doc.Captured = true
	e.log.Info("document captured",
		zap.String("session", e.session),
		zap.Int("width", buf.Width),
		zap.Int("height", buf.Height),
		zap.String("document_type", buf.DocumentType))
	return doc, buf
}

func (e *Engine) stepLiveness(frame Frame, lm *landmark.Result, now time.Time) (*liveness.Status, *CaptureBuffer) {
	if lm == nil || e.modelFailed {
		return nil, nil
	}
	st := e.machine.Update(lm, now)
	if !st.Trigger {
		return &st, nil
	}

	buf, err := e.captureFace(frame, now)
	if err != nil {
		e.log.Error("face capture failed", zap.Error(err))
		return &st, nil
	}
	e.log.Info("face captured", zap.String("session", e.session))
	return &st, buf
}

func (e *Engine) captureDocument(frame Frame, corners geometry.Quad, now time.Time) (*CaptureBuffer, error) {
	rc, err := e.rectifier.Rectify(frame.Image, corners)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}

	buf := &CaptureBuffer{
		Data:       rc.Data,
		Kind:       KindDocument,
		Width:      rc.Width,
		Height:     rc.Height,
		SessionID:  e.session,
		CapturedAt: now,
	}
	if e.classifier != nil {
		tag, err := e.classifier.Classify(rc.Data)
		if err != nil {
			e.log.Debug("document classification unavailable", zap.Error(err))
		} else {
			buf.DocumentType = tag
		}
	}
	return buf, nil
}

func (e *Engine) captureFace(frame Frame, now time.Time) (*CaptureBuffer, error) {
	data, err := encodeJPEG(frame.Image, e.cfg.Rectify.JPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCaptureFailed, err)
	}
	b := frame.Image.Bounds()
	return &CaptureBuffer{
		Data:       data,
		Kind:       KindFace,
		Width:      b.Dx(),
		Height:     b.Dy(),
		SessionID:  e.session,
		CapturedAt: now,
	}, nil
}

func (e *Engine) overlayCommand(doc DocumentStatus, lv *liveness.Status) overlay.Command {
	var guide *overlay.Circle
	if lv != nil && lv.Stage == liveness.StageCenter {
		guide = &overlay.Circle{
			X: e.cfg.Liveness.GuideCenterX,
			Y: e.cfg.Liveness.GuideCenterY,
			R: e.cfg.Liveness.GuideRadius,
		}
	}
	return overlay.Build(doc.Outline, doc.Quality, doc.Stable, e.statusText(doc, lv), guide)
}

func (e *Engine) statusText(doc DocumentStatus, lv *liveness.Status) string {
	if lv != nil && lv.Instruction != liveness.InstructionNone {
		return lv.Instruction.String()
	}
	switch {
	case doc.Captured:
		return "Document captured"
	case doc.Stable:
		return "Hold still"
	case doc.Found:
		return "Hold steady"
	default:
		return "Align your document"
	}
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = 92
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encoding frame: %w", err)
	}
	return buf.Bytes(), nil
}
