package engine

import (
	"context"
	"errors"
	"image"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framelock/capture-engine/internal/landmark"
	"github.com/framelock/capture-engine/internal/overlay"
)

// sliceSource replays a fixed set of frames, then reports EOF.
type sliceSource struct {
	frames []Frame
	next   int
}

func (s *sliceSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if s.next >= len(s.frames) {
		return Frame{}, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// endlessSource repeats one frame until the context dies.
type endlessSource struct {
	frame Frame
}

func (s *endlessSource) Next(ctx context.Context) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	return s.frame, nil
}

type memorySink struct {
	bufs []*CaptureBuffer
}

func (s *memorySink) Upload(_ context.Context, buf *CaptureBuffer) error {
	s.bufs = append(s.bufs, buf)
	return nil
}

type countingRenderer struct {
	commands []overlay.Command
}

func (r *countingRenderer) Render(cmd overlay.Command) {
	r.commands = append(r.commands, cmd)
}

type staticLandmarks struct {
	res *landmark.Result
}

func (s staticLandmarks) Landmarks(_ image.Image) (*landmark.Result, error) {
	return s.res, nil
}

func (s staticLandmarks) Close() error { return nil }

type failingLandmarks struct{}

func (failingLandmarks) Landmarks(_ image.Image) (*landmark.Result, error) {
	return nil, errors.New("detector crashed")
}

func (failingLandmarks) Close() error { return nil }

func fastConfig() Config {
	cfg := everyTickConfig()
	cfg.TickInterval = time.Millisecond
	return cfg
}

func docFrames(n int) []Frame {
	clock := newFrameClock()
	doc := documentFrame()
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = Frame{Image: doc, Timestamp: clock.tick()}
	}
	return frames
}

func TestRun_ProcessesUntilEOF(t *testing.T) {
	e := New(fastConfig())
	src := &sliceSource{frames: docFrames(6)}
	sink := &memorySink{}
	rend := &countingRenderer{}
	events := make(chan Event, 64)

	err := e.Run(context.Background(), src, nil, RunOptions{
		Upload: sink,
		Render: rend,
		Events: events,
	})
	require.NoError(t, err)

	require.Len(t, sink.bufs, 1)
	assert.Equal(t, KindDocument, sink.bufs[0].Kind)
	assert.Len(t, rend.commands, 6, "one overlay command per frame")

	close(events)
	updates, captures := 0, 0
	for ev := range events {
		switch ev.(type) {
		case DetectionUpdate:
			updates++
		case CaptureReady:
			captures++
		}
	}
	assert.Equal(t, 6, updates)
	assert.Equal(t, 1, captures)
}

func TestRun_WithLandmarkSource(t *testing.T) {
	e := New(fastConfig())
	blank := emptyFrame()
	clock := newFrameClock()
	frames := make([]Frame, 3)
	for i := range frames {
		frames[i] = Frame{Image: blank, Timestamp: clock.tick()}
	}
	events := make(chan Event, 16)

	err := e.Run(context.Background(), &sliceSource{frames: frames},
		staticLandmarks{res: faceResult(0)}, RunOptions{Events: events})
	require.NoError(t, err)

	close(events)
	for ev := range events {
		if update, ok := ev.(DetectionUpdate); ok {
			assert.NotNil(t, update.Liveness, "landmarks flow into the liveness pipeline")
		}
	}
}

func TestRun_LandmarkErrorsAreAbsorbed(t *testing.T) {
	e := New(fastConfig())
	frames := []Frame{{Image: emptyFrame(), Timestamp: newFrameClock().tick()}}
	events := make(chan Event, 16)

	err := e.Run(context.Background(), &sliceSource{frames: frames},
		failingLandmarks{}, RunOptions{Events: events})
	require.NoError(t, err, "a crashing landmark source does not end the session")

	close(events)
	seen := 0
	for ev := range events {
		if update, ok := ev.(DetectionUpdate); ok {
			seen++
			assert.Nil(t, update.Liveness)
		}
	}
	assert.Equal(t, 1, seen)
}

func TestRun_ContextCancellation(t *testing.T) {
	e := New(fastConfig())
	src := &endlessSource{frame: Frame{Image: emptyFrame()}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- e.Run(ctx, src, nil, RunOptions{})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after cancellation")
	}
}

func TestRun_CloseStopsLoop(t *testing.T) {
	e := New(fastConfig())
	src := &endlessSource{frame: Frame{Image: emptyFrame()}}

	done := make(chan error, 1)
	go func() {
		done <- e.Run(context.Background(), src, nil, RunOptions{})
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, e.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("run did not stop after close")
	}
}

func TestRun_RequiresFrameSource(t *testing.T) {
	e := New(fastConfig())
	err := e.Run(context.Background(), nil, nil, RunOptions{})
	require.Error(t, err)
}

func TestRun_FullEventsChannelNeverBlocks(t *testing.T) {
	e := New(fastConfig())
	events := make(chan Event, 1)

	err := e.Run(context.Background(), &sliceSource{frames: docFrames(10)}, nil,
		RunOptions{Events: events})
	require.NoError(t, err, "an unread events channel must not stall the loop")
	assert.LessOrEqual(t, len(events), 1)
}
