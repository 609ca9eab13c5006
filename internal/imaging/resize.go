package imaging

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/transform"
)

// Downscale resizes an image by a factor s in (0, 1], preserving aspect
// ratio. Heavy per-pixel analysis runs on the smaller copy.
//
// Returns the resized image together with the multiplier that maps analysis
// coordinates back onto the source frame (source = analysis × multiplier).
// A factor of 1, or any factor outside (0, 1), returns the input unchanged
// with multiplier 1.
func Downscale(img image.Image, s float64) (image.Image, float64) {
	if s <= 0 || s >= 1 {
		return img, 1.0
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	newW := int(math.Round(float64(w) * s))
	newH := int(math.Round(float64(h) * s))
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}
	if newW == w && newH == h {
		return img, 1.0
	}

	resized := transform.Resize(img, newW, newH, transform.Linear)
	return resized, float64(w) / float64(newW)
}
