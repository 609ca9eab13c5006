package rectify

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/framelock/capture-engine/internal/geometry"
)

// Methods recorded on a Capture.
const (
	MethodProjective = "projective"
	MethodCrop       = "crop"
)

// Config holds rectification options.
type Config struct {
	// JPEGQuality is the encoder quality in 1..100.
	JPEGQuality int `json:"jpeg_quality"`
}

// DefaultConfig returns the production rectification profile.
func DefaultConfig() Config {
	return Config{JPEGQuality: 92}
}

// Capture is one rectified, encoded document image.
type Capture struct {
	Data   []byte `json:"-"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Method string `json:"method"`
}

// Rectifier warps detected documents into upright rectangles.
type Rectifier struct {
	cfg Config
}

// NewRectifier builds a rectifier, falling back to the default JPEG
// quality when given one outside 1..100.
func NewRectifier(cfg Config) *Rectifier {
	if cfg.JPEGQuality < 1 || cfg.JPEGQuality > 100 {
		cfg.JPEGQuality = DefaultConfig().JPEGQuality
	}
	return &Rectifier{cfg: cfg}
}

// Rectify warps the region inside corners to an upright rectangle and
// encodes it as JPEG.
//
// The output width is the longer of the top and bottom quad sides, the
// height the longer of the left and right sides. Convex corner geometry
// gets a projective warp; anything else falls back to a bounding-box crop
// resized to the same dimensions, with the method recorded on the result.
func (r *Rectifier) Rectify(img image.Image, corners geometry.Quad) (*Capture, error) {
	if img == nil {
		return nil, errors.New("nil frame")
	}

	top, right, bottom, left := corners.SideLengths()
	width := int(math.Round(math.Max(top, bottom)))
	height := int(math.Round(math.Max(left, right)))
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("corner geometry collapses to a %dx%d output", width, height)
	}

	out, method := r.warp(img, corners, width, height)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.JPEG, imaging.JPEGQuality(r.cfg.JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encoding rectified document: %w", err)
	}

	return &Capture{
		Data:   buf.Bytes(),
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Method: method,
	}, nil
}

func (r *Rectifier) warp(img image.Image, corners geometry.Quad, width, height int) (image.Image, string) {
	if corners.IsConvex() {
		dst := [4]geometry.Point{
			geometry.Pt(0, 0),
			geometry.Pt(float64(width), 0),
			geometry.Pt(float64(width), float64(height)),
			geometry.Pt(0, float64(height)),
		}
		if h, err := computeHomography(dst, corners.Corners()); err == nil {
			return warpPerspective(imaging.Clone(img), h, width, height), MethodProjective
		}
	}
	return cropFallback(img, corners, width, height), MethodCrop
}

// cropFallback crops the corner bounding box and resizes it to the target
// dimensions. It corrects no skew; it only keeps captures usable when the
// projective path cannot run.
func cropFallback(img image.Image, corners geometry.Quad, width, height int) image.Image {
	min, max := corners.BoundingBox()
	rect := image.Rect(
		int(math.Floor(min.X)), int(math.Floor(min.Y)),
		int(math.Ceil(max.X)), int(math.Ceil(max.Y)),
	).Intersect(img.Bounds())

	if rect.Empty() {
		return imaging.New(width, height, color.NRGBA{})
	}
	return imaging.Resize(imaging.Crop(img, rect), width, height, imaging.Lanczos)
}
