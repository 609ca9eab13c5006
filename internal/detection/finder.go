package detection

import (
	"errors"
	"fmt"
	"image"

	"github.com/framelock/capture-engine/internal/geometry"
	"github.com/framelock/capture-engine/internal/imaging"
)

// Config holds the tunable parameters of the document pipeline.
//
// Two named profiles exist: DefaultConfig (lenient) and StrictConfig. They
// differ only in thresholds, never in code path, so behavior variants stay
// a configuration concern.
type Config struct {
	// Downscale is the analysis resolution factor in (0,1]; 1 analyzes the
	// frame at full resolution.
	Downscale float64 `json:"downscale"`

	// EdgeThreshold is the Sobel magnitude cutoff for the binary edge map,
	// on the 0..255 luminance scale. Useful values sit around 30-50.
	EdgeThreshold float64 `json:"edge_threshold"`

	// SeedStride is the scan stride used when seeding flood fills.
	SeedStride int `json:"seed_stride"`

	// MinContourSize discards edge blobs below this pixel count.
	MinContourSize int `json:"min_contour_size"`

	// MaxContourSize caps a single flood fill to bound worst-case cost.
	MaxContourSize int `json:"max_contour_size"`

	// MinAreaFrac and MaxAreaFrac bound a candidate hull's area as a
	// fraction of the analysis frame.
	MinAreaFrac float64 `json:"min_area_frac"`
	MaxAreaFrac float64 `json:"max_area_frac"`

	// EpsilonFracs is the Douglas-Peucker epsilon sweep, as fractions of
	// the hull perimeter, tried in order until exactly four vertices
	// result.
	EpsilonFracs []float64 `json:"epsilon_fracs"`

	// AreaWeight and RectWeight combine a candidate's normalized area and
	// rectangularity into its final score.
	AreaWeight float64 `json:"area_weight"`
	RectWeight float64 `json:"rect_weight"`

	// MinScore discards candidates scoring below it; zero accepts any
	// winner.
	MinScore float64 `json:"min_score"`
}

// DefaultConfig returns the lenient production profile.
func DefaultConfig() Config {
	return Config{
		Downscale:      1.0,
		EdgeThreshold:  40,
		SeedStride:     2,
		MinContourSize: 50,
		MaxContourSize: 8192,
		MinAreaFrac:    0.05,
		MaxAreaFrac:    0.95,
		EpsilonFracs:   []float64{0.02, 0.03, 0.05, 0.08, 0.10},
		AreaWeight:     0.4,
		RectWeight:     0.6,
		MinScore:       0.3,
	}
}

// StrictConfig returns a profile with a tighter area band, edge threshold
// and score floor, for deployments that prefer misses over false
// positives.
func StrictConfig() Config {
	cfg := DefaultConfig()
	cfg.EdgeThreshold = 50
	cfg.MinAreaFrac = 0.10
	cfg.MaxAreaFrac = 0.90
	cfg.MinScore = 0.4
	return cfg
}

// LenientConfig is DefaultConfig under its profile name; the default
// tuning is the lenient one, StrictConfig is the tightened variant.
func LenientConfig() Config {
	return DefaultConfig()
}

// FindResult describes the best document candidate in one frame.
type FindResult struct {
	// Found reports whether any contour survived filtering and scoring.
	Found bool `json:"found"`

	// Corners is the winning quadrilateral in canonical order and
	// source-frame coordinates. Zero value when Found is false.
	Corners geometry.Quad `json:"corners"`

	// Score is the winning candidate's combined area/rectangularity score.
	Score float64 `json:"score"`

	// Rectangularity blends opposite-side balance and corner-angle
	// closeness to 90° for the winning quad (0 to 1).
	Rectangularity float64 `json:"rectangularity"`

	// AreaFraction is the winning hull's share of the frame area.
	AreaFraction float64 `json:"area_fraction"`

	// Contours is the number of candidate contours that were examined.
	Contours int `json:"contours"`
}

// Finder runs the document pipeline with a fixed configuration.
//
// A Finder carries no per-frame state: Find is deterministic for identical
// input and safe for concurrent use.
type Finder struct {
	cfg Config
}

// NewFinder creates a Finder with the given configuration. Zero or missing
// values are not defaulted; start from DefaultConfig or StrictConfig.
func NewFinder(cfg Config) *Finder {
	return &Finder{cfg: cfg}
}

// Config returns the finder's configuration.
func (f *Finder) Config() Config {
	return f.cfg
}

// Find locates the best document quadrilateral in a frame.
//
// The frame is optionally downscaled, reduced to a binary edge map, and
// traced into contours; each contour's convex hull is area-filtered,
// simplified toward four corners and scored. The highest-scoring candidate
// is returned with corners mapped back to source-frame coordinates.
//
// Returns an error only for unusable input (nil or tiny frames). A frame
// with no document yields Found=false and a nil error.
func (f *Finder) Find(img image.Image) (*FindResult, error) {
	if img == nil {
		return nil, errors.New("nil frame")
	}

	small, factor := imaging.Downscale(img, f.cfg.Downscale)
	width := small.Bounds().Dx()
	height := small.Bounds().Dy()
	if width < 8 || height < 8 {
		return nil, fmt.Errorf("frame too small for analysis: %dx%d", width, height)
	}

	edges := imaging.Grayscale(small).
		Blur3().
		SobelMagnitude().
		Threshold(f.cfg.EdgeThreshold)

	contours := findContours(edges, f.cfg.SeedStride, f.cfg.MinContourSize, f.cfg.MaxContourSize)

	frameArea := float64(width * height)
	result := &FindResult{Contours: len(contours)}
	bestScore := -1.0

	for _, contour := range contours {
		hull := geometry.ConvexHull(contour)
		if len(hull) < 4 {
			continue
		}

		frac := geometry.RingArea(hull) / frameArea
		if frac < f.cfg.MinAreaFrac || frac > f.cfg.MaxAreaFrac {
			continue
		}

		quad, ok := quadFromHull(hull, f.cfg.EpsilonFracs)
		if !ok || !quad.IsConvex() {
			continue
		}

		rect := Rectangularity(quad)
		score := frac*f.cfg.AreaWeight + rect*f.cfg.RectWeight
		if score < f.cfg.MinScore {
			continue
		}
		if score > bestScore {
			bestScore = score
			result.Found = true
			result.Corners = quad.Scale(factor)
			result.Score = score
			result.Rectangularity = rect
			result.AreaFraction = frac
		}
	}

	return result, nil
}

// quadFromHull reduces a convex hull ring to exactly four corners.
//
// The Douglas-Peucker epsilon sweep is tried in order; the first epsilon
// producing exactly four vertices wins. If the sweep only reaches five to
// eight vertices, the four coordinate-extreme points are used instead.
// Hulls that collapse below four vertices, or never come close to four,
// yield no quad.
func quadFromHull(hull []geometry.Point, epsilonFracs []float64) (geometry.Quad, bool) {
	if len(hull) < 4 {
		return geometry.Quad{}, false
	}
	if len(hull) == 4 {
		return geometry.OrderCorners([4]geometry.Point{hull[0], hull[1], hull[2], hull[3]}), true
	}

	perimeter := geometry.RingPerimeter(hull)
	best := hull
	for _, frac := range epsilonFracs {
		simplified := geometry.SimplifyClosed(hull, frac*perimeter)
		if len(simplified) == 4 {
			return geometry.OrderCorners([4]geometry.Point{
				simplified[0], simplified[1], simplified[2], simplified[3],
			}), true
		}
		if len(simplified) < 4 {
			// Larger epsilons only collapse further.
			break
		}
		best = simplified
	}

	if len(best) >= 4 && len(best) <= 8 {
		return geometry.ExtremeQuad(hull), true
	}
	return geometry.Quad{}, false
}

// Rectangularity measures how rectangular a quad is, blending the balance
// of opposing side lengths with the closeness of corner angles to 90°.
// 1.0 is a perfect rectangle; the score never drops below 0.
func Rectangularity(q geometry.Quad) float64 {
	top, right, bottom, left := q.SideLengths()
	sideBalance := (ratioMinMax(top, bottom) + ratioMinMax(left, right)) / 2
	return 0.5*sideBalance + 0.5*q.AngleRegularity()
}

// ratioMinMax returns min(a,b)/max(a,b), or 0 when the larger side is zero.
func ratioMinMax(a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b == 0 {
		return 0
	}
	return a / b
}
