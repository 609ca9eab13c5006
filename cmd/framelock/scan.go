package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/framelock/capture-engine/internal/doctext"
	"github.com/framelock/capture-engine/internal/engine"
	"github.com/framelock/capture-engine/internal/imaging"
	"github.com/framelock/capture-engine/internal/landmark"
	"github.com/framelock/capture-engine/internal/overlay"
)

type scanSummary struct {
	Session       string   `json:"session"`
	Frames        int      `json:"frames"`
	Documents     int      `json:"documents"`
	Faces         int      `json:"faces"`
	ModelFailures int      `json:"model_failures"`
	Completed     bool     `json:"liveness_completed"`
	Captures      []string `json:"captures,omitempty"`
}

func newScanCmd() *cobra.Command {
	var (
		outputDir  string
		overlayDir string
		replayPath string
		cascade    string
		puploc     string
		flpDir     string
	)

	cmd := &cobra.Command{
		Use:   "scan <frame-dir>",
		Short: "Replay a frame directory as one capture session",
		Long: `scan feeds a directory of frames (sorted by name) through a full
capture session: document search, stability tracking, auto-capture, and
the head-turn challenge when a landmark source is attached via --replay
or --face-cascade. Captures land in --output and a session summary is
printed as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, args[0], outputDir, overlayDir, replayPath, cascade, puploc, flpDir)
		},
	}
	cmd.Flags().StringVarP(&outputDir, "output", "o", "captures",
		"directory for captured documents and faces")
	cmd.Flags().StringVar(&overlayDir, "overlay-dir", "",
		"write each frame's rendered guidance overlay here (debug)")
	cmd.Flags().StringVar(&replayPath, "replay", "",
		"JSONL landmark recording to replay instead of a live detector")
	cmd.Flags().StringVar(&cascade, "face-cascade", "",
		"pigo face cascade file enabling live landmark detection")
	cmd.Flags().StringVar(&puploc, "puploc-cascade", "",
		"pigo pupil localization cascade (with --face-cascade)")
	cmd.Flags().StringVar(&flpDir, "landmark-dir", "",
		"pigo facial landmark cascade directory (with --face-cascade)")
	return cmd
}

func runScan(cmd *cobra.Command, frameDir, outputDir, overlayDir, replayPath, cascade, puploc, flpDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	lms, err := buildLandmarkSource(replayPath, cascade, puploc, flpDir)
	if err != nil {
		return err
	}
	if lms != nil {
		defer func() { _ = lms.Close() }()
	}

	// Frame timestamps are spaced at the configured tick interval, so
	// cooldowns and grace windows behave as they would live. The loop
	// ticker only paces polling and can run flat out.
	frameInterval := cfg.TickInterval
	cfg.TickInterval = time.Millisecond
	if lms == nil {
		// No face model attached; the init deadline would only add noise.
		cfg.ModelInitTimeout = 24 * time.Hour
	}

	frames, err := newDirFrameSource(frameDir, frameInterval)
	if err != nil {
		return err
	}
	defer frames.close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	sink := &fileSink{dir: outputDir, log: log}

	var renderer *overlayWriter
	if overlayDir != "" {
		if err := os.MkdirAll(overlayDir, 0o755); err != nil {
			return fmt.Errorf("creating overlay directory: %w", err)
		}
		renderer = &overlayWriter{dir: overlayDir, frames: frames, log: log}
	}

	eng := engine.New(cfg,
		engine.WithLogger(log),
		engine.WithClassifier(doctext.NewClassifier()),
	)
	defer func() { _ = eng.Close() }()

	// Sized for the worst case so the summary never loses events.
	events := make(chan engine.Event, 2*len(frames.paths)+8)
	opts := engine.RunOptions{Upload: sink, Events: events}
	if renderer != nil {
		opts.Render = renderer
	}
	err = eng.Run(cmd.Context(), frames, lms, opts)
	close(events)
	if err != nil {
		return err
	}

	summary := scanSummary{
		Session:  eng.Session(),
		Frames:   frames.read,
		Captures: sink.written,
	}
	for ev := range events {
		switch ev := ev.(type) {
		case engine.CaptureReady:
			switch ev.Buffer.Kind {
			case engine.KindDocument:
				summary.Documents++
			case engine.KindFace:
				summary.Faces++
			}
		case engine.DetectionUpdate:
			if ev.Liveness != nil && ev.Liveness.Completed {
				summary.Completed = true
			}
		case engine.ModelFailure:
			summary.ModelFailures++
		}
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func buildLandmarkSource(replayPath, cascade, puploc, flpDir string) (landmark.Source, error) {
	switch {
	case replayPath != "" && cascade != "":
		return nil, fmt.Errorf("--replay and --face-cascade are mutually exclusive")
	case replayPath != "":
		return landmark.NewReplayFile(replayPath)
	case cascade != "":
		pcfg := landmark.DefaultPigoConfig()
		pcfg.FaceCascadePath = cascade
		pcfg.PuplocCascadePath = puploc
		pcfg.LandmarkDir = flpDir
		return landmark.NewPigoSource(pcfg)
	default:
		return nil, nil
	}
}

// dirFrameSource replays the image files of a directory in name order,
// stamping each frame as if it arrived at the live capture cadence.
type dirFrameSource struct {
	paths    []string
	interval time.Duration
	start    time.Time
	read     int
	last     image.Image
	bar      *progressbar.ProgressBar
}

func newDirFrameSource(dir string, interval time.Duration) (*dirFrameSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading frame directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png", ".bmp":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no frames in %s", dir)
	}
	sort.Strings(paths)

	return &dirFrameSource{
		paths:    paths,
		interval: interval,
		start:    time.Now(),
		bar:      newProgressBar(len(paths), "scanning"),
	}, nil
}

func (s *dirFrameSource) Next(ctx context.Context) (engine.Frame, error) {
	if err := ctx.Err(); err != nil {
		return engine.Frame{}, err
	}
	if s.read >= len(s.paths) {
		return engine.Frame{}, io.EOF
	}

	img, err := imaging.DecodeFile(s.paths[s.read])
	if err != nil {
		return engine.Frame{}, err
	}

	frame := engine.Frame{
		Image:     img,
		Timestamp: s.start.Add(time.Duration(s.read) * s.interval),
	}
	s.read++
	s.last = img
	_ = s.bar.Add(1)
	return frame, nil
}

func (s *dirFrameSource) close() {
	_ = s.bar.Finish()
}

// overlayWriter renders each tick's guidance overlay onto the frame that
// produced it and writes the result as a numbered PNG. Render runs on the
// engine loop right after Next, so the source's last frame is the right one.
type overlayWriter struct {
	dir    string
	frames *dirFrameSource
	log    *zap.Logger
	n      int
}

func (w *overlayWriter) Render(cmd overlay.Command) {
	frame := w.frames.last
	if frame == nil {
		return
	}

	rendered := overlay.Render(frame, cmd)
	path := filepath.Join(w.dir, fmt.Sprintf("overlay-%05d.png", w.n))
	w.n++

	f, err := os.Create(path)
	if err != nil {
		w.log.Warn("overlay write failed", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()
	if err := png.Encode(f, rendered); err != nil {
		w.log.Warn("overlay encode failed", zap.String("path", path), zap.Error(err))
	}
}

// fileSink writes captures under a directory, numbered per kind.
type fileSink struct {
	dir     string
	log     *zap.Logger
	counts  map[engine.CaptureKind]int
	written []string
}

func (s *fileSink) Upload(_ context.Context, buf *engine.CaptureBuffer) error {
	if s.counts == nil {
		s.counts = make(map[engine.CaptureKind]int)
	}
	s.counts[buf.Kind]++

	name := fmt.Sprintf("%s-%02d.jpg", buf.Kind, s.counts[buf.Kind])
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, buf.Data, 0o644); err != nil {
		return fmt.Errorf("writing capture: %w", err)
	}

	s.written = append(s.written, path)
	s.log.Info("capture written",
		zap.String("path", path),
		zap.String("kind", string(buf.Kind)),
		zap.String("document_type", buf.DocumentType),
		zap.Int("bytes", len(buf.Data)))
	return nil
}
