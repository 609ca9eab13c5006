package imaging

import (
	"image"
	"math"
)

// Plane is a single-channel raster held as rows of float64 samples in the
// 0..255 range, indexed row first: p[y][x].
type Plane [][]float64

// NewPlane allocates a zeroed plane of the given size.
func NewPlane(width, height int) Plane {
	p := make(Plane, height)
	for y := range p {
		p[y] = make([]float64, width)
	}
	return p
}

// Width returns the number of samples per row, 0 for an empty plane.
func (p Plane) Width() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// Height returns the number of rows.
func (p Plane) Height() int {
	return len(p)
}

// Bitmap is a binary raster, typically an edge map, indexed row first.
type Bitmap [][]bool

// Width returns the number of samples per row, 0 for an empty bitmap.
func (b Bitmap) Width() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Height returns the number of rows.
func (b Bitmap) Height() int {
	return len(b)
}

// Grayscale converts an image to a luminance plane using ITU-R BT.601
// weights: Y = 0.299*R + 0.587*G + 0.114*B.
func Grayscale(img image.Image) Plane {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			gray[y][x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return gray
}

// Blur3 applies a 3x3 Gaussian blur to reduce sensor noise ahead of
// gradient computation.
//
// Uses the binomial kernel
//
//	1 2 1
//	2 4 2
//	1 2 1
//
// normalized by 16. Border samples use clamped (replicated) edge values.
func (p Plane) Blur3() Plane {
	kernel := [3][3]float64{
		{1, 2, 1},
		{2, 4, 2},
		{1, 2, 1},
	}
	const kernelSum = 16.0

	width, height := p.Width(), p.Height()
	out := NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += p[py][px] * kernel[ky+1][kx+1]
				}
			}
			out[y][x] = sum / kernelSum
		}
	}
	return out
}

// SobelMagnitude computes the gradient magnitude at every sample using the
// Sobel operator: magnitude = sqrt(Gx² + Gy²).
//
// Border samples use clamped edge values, so a uniform plane produces zero
// gradient everywhere, including along its border.
func (p Plane) SobelMagnitude() Plane {
	sobelX := [3][3]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [3][3]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	width, height := p.Width(), p.Height()
	out := NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += p[py][px] * sobelX[ky+1][kx+1]
					gy += p[py][px] * sobelY[ky+1][kx+1]
				}
			}
			out[y][x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return out
}

// Threshold produces a binary map marking samples strictly greater than t.
//
// Applied to a Sobel magnitude plane this yields the edge map consumed by
// contour tracing. Magnitudes are on the 0..255 luminance scale, so a step
// edge of moderate contrast comfortably clears thresholds in the 30-50
// range while flat regions stay dark.
func (p Plane) Threshold(t float64) Bitmap {
	width, height := p.Width(), p.Height()
	out := make(Bitmap, height)
	for y := 0; y < height; y++ {
		out[y] = make([]bool, width)
		for x := 0; x < width; x++ {
			out[y][x] = p[y][x] > t
		}
	}
	return out
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
