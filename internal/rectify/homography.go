package rectify

import (
	"errors"
	"image"
	"math"

	"github.com/framelock/capture-engine/internal/geometry"
)

// homography holds the eight coefficients of a projective transform with
// the ninth fixed at 1:
//
//	x' = (h0·x + h1·y + h2) / (h6·x + h7·y + 1)
//	y' = (h3·x + h4·y + h5) / (h6·x + h7·y + 1)
type homography [8]float64

// computeHomography solves for the transform mapping each dst point onto
// the corresponding src point.
//
// Each correspondence contributes two rows to an 8x8 linear system, solved
// by Gaussian elimination with partial pivoting. Near-singular systems,
// which arise from collinear or coincident corners, return an error.
func computeHomography(dst, src [4]geometry.Point) (*homography, error) {
	var m [8][9]float64
	for i := 0; i < 4; i++ {
		dx, dy := dst[i].X, dst[i].Y
		sx, sy := src[i].X, src[i].Y
		m[2*i] = [9]float64{dx, dy, 1, 0, 0, 0, -dx * sx, -dy * sx, sx}
		m[2*i+1] = [9]float64{0, 0, 0, dx, dy, 1, -dx * sy, -dy * sy, sy}
	}

	for col := 0; col < 8; col++ {
		pivot := col
		for row := col + 1; row < 8; row++ {
			if math.Abs(m[row][col]) > math.Abs(m[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, errors.New("corner geometry is singular")
		}
		m[col], m[pivot] = m[pivot], m[col]

		for row := col + 1; row < 8; row++ {
			f := m[row][col] / m[col][col]
			for k := col; k < 9; k++ {
				m[row][k] -= f * m[col][k]
			}
		}
	}

	var h homography
	for row := 7; row >= 0; row-- {
		sum := m[row][8]
		for k := row + 1; k < 8; k++ {
			sum -= m[row][k] * h[k]
		}
		h[row] = sum / m[row][row]
	}
	return &h, nil
}

// apply maps one point through the transform. ok is false when the point
// lies on the transform's horizon line and has no finite image.
func (h *homography) apply(x, y float64) (sx, sy float64, ok bool) {
	w := h[6]*x + h[7]*y + 1
	if w == 0 {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / w, (h[3]*x + h[4]*y + h[5]) / w, true
}

// warpPerspective renders a width x height destination image by mapping
// each destination pixel center through the homography and bilinearly
// sampling the source.
func warpPerspective(src *image.NRGBA, h *homography, width, height int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy, ok := h.apply(float64(x)+0.5, float64(y)+0.5)
			if !ok {
				continue
			}
			i := out.PixOffset(x, y)
			r, g, b, a := sampleBilinear(src, sx-0.5, sy-0.5)
			out.Pix[i] = r
			out.Pix[i+1] = g
			out.Pix[i+2] = b
			out.Pix[i+3] = a
		}
	}
	return out
}

// sampleBilinear interpolates the four pixels around a fractional source
// position, clamping coordinates to the image so border pixels repeat.
func sampleBilinear(img *image.NRGBA, x, y float64) (r, g, b, a uint8) {
	width := img.Rect.Dx()
	height := img.Rect.Dy()
	if width == 0 || height == 0 {
		return 0, 0, 0, 0
	}

	x = math.Min(math.Max(x, 0), float64(width-1))
	y = math.Min(math.Max(y, 0), float64(height-1))

	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 > width-1 {
		x1 = width - 1
	}
	if y1 > height-1 {
		y1 = height - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	var out [4]uint8
	for c := 0; c < 4; c++ {
		p00 := float64(img.Pix[y0*img.Stride+x0*4+c])
		p10 := float64(img.Pix[y0*img.Stride+x1*4+c])
		p01 := float64(img.Pix[y1*img.Stride+x0*4+c])
		p11 := float64(img.Pix[y1*img.Stride+x1*4+c])
		out[c] = uint8(math.Round(w00*p00 + w10*p10 + w01*p01 + w11*p11))
	}
	return out[0], out[1], out[2], out[3]
}
