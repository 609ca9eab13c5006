package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/framelock/capture-engine/internal/landmark"
	"github.com/framelock/capture-engine/internal/overlay"
)

// FrameSource supplies frames on demand. Next blocks until a frame is
// available, returns io.EOF when the stream ends, and must treat the
// returned frame as read-only for the duration of the tick.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

// UploadSink receives finished captures. The engine keeps no reference
// to the buffer after Upload returns.
type UploadSink interface {
	Upload(ctx context.Context, buf *CaptureBuffer) error
}

// RenderSink receives one overlay command per processed tick.
type RenderSink interface {
	Render(cmd overlay.Command)
}

// RunOptions are Run's optional collaborators. Nil fields are skipped;
// a full Events channel drops events rather than blocking the loop.
type RunOptions struct {
	Upload UploadSink
	Render RenderSink
	Events chan<- Event
}

// Run drives the engine from a frame source until the context is
// canceled, the source ends, or Close is called. Landmarks are looked
// up per frame when lms is non-nil.
func (e *Engine) Run(ctx context.Context, frames FrameSource, lms landmark.Source, opts RunOptions) error {
	if frames == nil {
		return errors.New("frame source is required")
	}

	tick := time.NewTicker(e.cfg.TickInterval)
	defer tick.Stop()

	e.log.Info("run loop started",
		zap.String("session", e.session),
		zap.Duration("interval", e.cfg.TickInterval))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.closed:
			return nil
		case <-tick.C:
		}

		frame, err := frames.Next(ctx)
		if errors.Is(err, io.EOF) {
			e.log.Info("frame source ended", zap.String("session", e.session))
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading frame: %w", err)
		}

		var lr *landmark.Result
		if lms != nil {
			lr, err = lms.Landmarks(frame.Image)
			if err != nil {
				e.log.Warn("landmark lookup failed", zap.Error(err))
				lr = nil
			}
		}

		for _, ev := range e.Tick(frame, lr) {
			e.dispatch(ctx, ev, opts)
		}
	}
}

func (e *Engine) dispatch(ctx context.Context, ev Event, opts RunOptions) {
	switch ev := ev.(type) {
	case DetectionUpdate:
		if opts.Render != nil {
			opts.Render.Render(ev.Overlay)
		}
	case CaptureReady:
		if opts.Upload != nil {
			if err := opts.Upload.Upload(ctx, ev.Buffer); err != nil {
				e.log.Error("upload failed",
					zap.String("kind", string(ev.Buffer.Kind)),
					zap.Error(err))
			}
		}
	case ModelFailure:
		e.log.Error("model failure event", zap.Error(ev.Err))
	}

	if opts.Events != nil {
		select {
		case opts.Events <- ev:
		default:
		}
	}
}
