package landmark

import (
	"errors"
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// PigoConfig locates the cascade files and tunes the pure-Go detector.
// Cascade binaries ship with the pigo project; their paths are runtime
// configuration, never compiled in.
type PigoConfig struct {
	// FaceCascadePath is the binary face classifier. Required.
	FaceCascadePath string `json:"face_cascade_path"`

	// PuplocCascadePath is the pupil localization cascade. Optional: when
	// empty, eye positions are estimated geometrically from the face box.
	PuplocCascadePath string `json:"puploc_cascade_path"`

	// LandmarkDir holds the facial landmark cascades. Optional: when
	// empty, the nose bridge falls back to the eye midline, which pins
	// yaw near zero and limits the source to centering checks.
	LandmarkDir string `json:"landmark_dir"`

	// LandmarkName selects the landmark cascade used for the nose bridge.
	LandmarkName string `json:"landmark_name"`

	// MinSize and MaxSize bound the face search in pixels.
	MinSize int `json:"min_size"`
	MaxSize int `json:"max_size"`

	// ShiftFactor moves the detection window by a fraction of its size;
	// ScaleFactor grows it between scans.
	ShiftFactor float64 `json:"shift_factor"`
	ScaleFactor float64 `json:"scale_factor"`

	// QualityThreshold drops detections scoring below it.
	QualityThreshold float32 `json:"quality_threshold"`

	// Perturbs is the perturbation count for pupil and landmark voting.
	Perturbs int `json:"perturbs"`

	// IoU is the cluster intersection-over-union threshold.
	IoU float64 `json:"iou"`
}

// DefaultPigoConfig returns the detector profile used by the engine.
// Cascade paths must still be filled in by the caller.
func DefaultPigoConfig() PigoConfig {
	return PigoConfig{
		LandmarkName:     "lp46",
		MinSize:          100,
		MaxSize:          600,
		ShiftFactor:      0.1,
		ScaleFactor:      1.1,
		QualityThreshold: 5.0,
		Perturbs:         50,
		IoU:              0.2,
	}
}

// PigoSource detects faces and landmarks with the pigo cascades. Pure Go,
// no external runtime. Not safe for concurrent use.
type PigoSource struct {
	cfg        PigoConfig
	classifier *pigo.Pigo
	puploc     *pigo.PuplocCascade
	flpcs      map[string][]*pigo.FlpCascade
}

// NewPigoSource loads and unpacks the configured cascades. Missing or
// corrupt cascade files fail construction; treat such errors as a fatal
// initialization failure of the liveness path.
func NewPigoSource(cfg PigoConfig) (*PigoSource, error) {
	if cfg.FaceCascadePath == "" {
		return nil, errors.New("face cascade path required")
	}

	faceBin, err := os.ReadFile(cfg.FaceCascadePath)
	if err != nil {
		return nil, fmt.Errorf("reading face cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(faceBin)
	if err != nil {
		return nil, fmt.Errorf("parsing face cascade: %w", err)
	}

	src := &PigoSource{cfg: cfg, classifier: classifier}

	if cfg.PuplocCascadePath != "" {
		puplocBin, err := os.ReadFile(cfg.PuplocCascadePath)
		if err != nil {
			return nil, fmt.Errorf("reading puploc cascade: %w", err)
		}
		plc, err := pigo.NewPuplocCascade().UnpackCascade(puplocBin)
		if err != nil {
			return nil, fmt.Errorf("parsing puploc cascade: %w", err)
		}
		src.puploc = plc

		if cfg.LandmarkDir != "" {
			flpcs, err := plc.ReadCascadeDir(cfg.LandmarkDir)
			if err != nil {
				return nil, fmt.Errorf("reading landmark cascades: %w", err)
			}
			src.flpcs = flpcs
		}
	}

	return src, nil
}

// Landmarks runs the cascade pipeline on one frame and returns the primary
// face's landmark set, or a no-face result when nothing qualifies.
func (s *PigoSource) Landmarks(img image.Image) (*Result, error) {
	if img == nil {
		return nil, errors.New("nil frame")
	}

	bounds := img.Bounds()
	cols, rows := bounds.Dx(), bounds.Dy()
	if cols < 1 || rows < 1 {
		return nil, fmt.Errorf("frame too small for face detection: %dx%d", cols, rows)
	}

	params := pigo.CascadeParams{
		MinSize:     s.cfg.MinSize,
		MaxSize:     s.cfg.MaxSize,
		ShiftFactor: s.cfg.ShiftFactor,
		ScaleFactor: s.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pigo.RgbToGrayscale(img),
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := s.classifier.RunCascade(params, 0.0)
	dets = s.classifier.ClusterDetections(dets, s.cfg.IoU)

	faces := make([]pigo.Detection, 0, len(dets))
	for _, det := range dets {
		if det.Q >= s.cfg.QualityThreshold {
			faces = append(faces, det)
		}
	}
	if len(faces) == 0 {
		return &Result{Faces: 0}, nil
	}

	primary := faces[0]
	for _, det := range faces[1:] {
		if det.Q > primary.Q {
			primary = det
		}
	}

	left, right := s.locateEyes(primary, params.ImageParams)
	nose := s.locateNose(left, right, params.ImageParams)

	set := &Set{
		LeftEyeOuter:  normalize(float64(left.Col), float64(left.Row), cols, rows),
		RightEyeOuter: normalize(float64(right.Col), float64(right.Row), cols, rows),
		NoseBridge:    nose,
		Face:          faceBox(primary, cols, rows),
	}
	return &Result{Set: set, Faces: len(faces)}, nil
}

// Close implements Source. The cascades hold no OS resources.
func (s *PigoSource) Close() error {
	return nil
}

// locateEyes seeds pupil positions from the face geometry and refines them
// with the puploc cascade when one is loaded. The seed offsets are the
// canonical pigo pupil priors.
func (s *PigoSource) locateEyes(face pigo.Detection, img pigo.ImageParams) (left, right *pigo.Puploc) {
	scale := float32(face.Scale)
	left = &pigo.Puploc{
		Row:      face.Row - int(0.075*scale),
		Col:      face.Col - int(0.175*scale),
		Scale:    scale * 0.25,
		Perturbs: s.cfg.Perturbs,
	}
	right = &pigo.Puploc{
		Row:      face.Row - int(0.075*scale),
		Col:      face.Col + int(0.185*scale),
		Scale:    scale * 0.25,
		Perturbs: s.cfg.Perturbs,
	}

	if s.puploc == nil {
		return left, right
	}
	if refined := s.puploc.RunDetector(*left, img, 0.0, false); refined.Row > 0 && refined.Col > 0 {
		left = refined
	}
	if refined := s.puploc.RunDetector(*right, img, 0.0, false); refined.Row > 0 && refined.Col > 0 {
		right = refined
	}
	return left, right
}

// locateNose returns the nose-bridge point from the landmark cascade, or
// the eye midline when no cascade is available.
func (s *PigoSource) locateNose(left, right *pigo.Puploc, img pigo.ImageParams) Point {
	if s.flpcs != nil {
		if cascades, ok := s.flpcs[s.cfg.LandmarkName]; ok && len(cascades) > 0 {
			flp := cascades[0].GetLandmarkPoint(left, right, img, s.cfg.Perturbs, false)
			if flp.Row > 0 && flp.Col > 0 {
				return normalize(float64(flp.Col), float64(flp.Row), img.Cols, img.Rows)
			}
		}
	}
	return Point{
		X: (float64(left.Col) + float64(right.Col)) / 2 / float64(img.Cols),
		Y: (float64(left.Row) + float64(right.Row)) / 2 / float64(img.Rows),
	}
}

func normalize(x, y float64, cols, rows int) Point {
	return Point{X: x / float64(cols), Y: y / float64(rows)}
}

// faceBox converts a pigo detection, a square centered on (Col, Row) with
// side Scale, into a normalized box.
func faceBox(det pigo.Detection, cols, rows int) Box {
	side := float64(det.Scale)
	return Box{
		X: (float64(det.Col) - side/2) / float64(cols),
		Y: (float64(det.Row) - side/2) / float64(rows),
		W: side / float64(cols),
		H: side / float64(rows),
	}
}
