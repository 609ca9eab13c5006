package main

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/framelock/capture-engine/internal/detection"
	"github.com/framelock/capture-engine/internal/geometry"
	"github.com/framelock/capture-engine/internal/imaging"
	"github.com/framelock/capture-engine/internal/rectify"
)

// detectReport is the per-image JSON record detect prints.
type detectReport struct {
	Path           string         `json:"path"`
	Found          bool           `json:"found"`
	Corners        *geometry.Quad `json:"corners,omitempty"`
	Score          float64        `json:"score,omitempty"`
	Rectangularity float64        `json:"rectangularity,omitempty"`
	AreaFraction   float64        `json:"area_fraction,omitempty"`
	Quality        float64        `json:"quality,omitempty"`
	Rectified      string         `json:"rectified,omitempty"`
	Error          string         `json:"error,omitempty"`
}

func newDetectCmd() *cobra.Command {
	var rectifyDir string

	cmd := &cobra.Command{
		Use:   "detect <image>...",
		Short: "Locate documents in still images",
		Long: `detect runs the document pipeline on each image and prints one JSON
record per file: the detected corner quad, the candidate score, and the
quality the capture gate would see. With --rectify the detected
documents are also warped upright and written as JPEG files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, rectifyDir)
		},
	}
	cmd.Flags().StringVar(&rectifyDir, "rectify", "",
		"write rectified documents into this directory")
	return cmd
}

func runDetect(cmd *cobra.Command, args []string, rectifyDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if rectifyDir != "" {
		if err := os.MkdirAll(rectifyDir, 0o755); err != nil {
			return fmt.Errorf("creating rectify directory: %w", err)
		}
	}

	// The cache folds repeated paths into a single decode.
	frames := imaging.NewFrameCache()
	reports := make([]detectReport, len(args))
	images := make([]image.Image, len(args))
	for i, path := range args {
		reports[i] = detectReport{Path: path}
		img, err := frames.Load(path)
		if err != nil {
			reports[i].Error = err.Error()
			log.Warn("skipping unreadable image", zap.String("path", path), zap.Error(err))
			continue
		}
		images[i] = img
	}

	// One worker keeps pool delivery aligned with submission order, so
	// every image gets its result.
	finder := detection.NewFinder(cfg.Detection)
	pool := detection.NewPool(finder, 1, len(args))
	seqToIndex := make(map[uint64]int, len(args))
	submitted := 0
	for i, img := range images {
		if img == nil {
			continue
		}
		seq, ok := pool.Submit(img)
		if !ok {
			reports[i].Error = "detection queue full"
			continue
		}
		seqToIndex[seq] = i
		submitted++
	}
	go pool.Close()

	bar := newProgressBar(submitted, "detecting")
	rectifier := rectify.NewRectifier(cfg.Rectify)
	for res := range pool.Results() {
		i, ok := seqToIndex[res.Seq]
		if !ok {
			continue
		}
		_ = bar.Add(1)

		if res.Err != nil {
			reports[i].Error = res.Err.Error()
			continue
		}
		fillReport(&reports[i], images[i], res.Find, cfg.Quality)

		if rectifyDir != "" && res.Find.Found {
			out, err := writeRectified(rectifier, images[i], res.Find.Corners, rectifyDir, args[i])
			if err != nil {
				log.Warn("rectification failed", zap.String("path", args[i]), zap.Error(err))
			} else {
				reports[i].Rectified = out
			}
		}
	}
	_ = bar.Finish()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(reports)
}

func fillReport(r *detectReport, img image.Image, find *detection.FindResult, qcfg detection.QualityConfig) {
	r.Found = find.Found
	if !find.Found {
		return
	}
	corners := find.Corners
	r.Corners = &corners
	r.Score = find.Score
	r.Rectangularity = find.Rectangularity
	r.AreaFraction = find.AreaFraction
	bounds := img.Bounds()
	r.Quality = detection.Quality(corners, bounds.Dx(), bounds.Dy(), qcfg)
}

func writeRectified(r *rectify.Rectifier, img image.Image, corners geometry.Quad, dir, src string) (string, error) {
	capture, err := r.Rectify(img, corners)
	if err != nil {
		return "", err
	}
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	out := filepath.Join(dir, base+".rectified.jpg")
	if err := os.WriteFile(out, capture.Data, 0o644); err != nil {
		return "", err
	}
	return out, nil
}

func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
