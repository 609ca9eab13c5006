package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// createTestImage creates a solid color test image
func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createStepImage creates an image that is dark on the left half and light
// on the right half, giving a single vertical step edge.
func createStepImage(width, height, step int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if x < step {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img
}

func TestGrayscale_Luminance(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(5, 5, color.RGBA{255, 0, 0, 255}) // red
	img.Set(6, 5, color.RGBA{0, 255, 0, 255}) // green
	img.Set(7, 5, color.RGBA{0, 0, 255, 255}) // blue

	gray := Grayscale(img)

	// Red: 0.299*255 = 76.2
	if g := gray[5][5]; g < 70 || g > 85 {
		t.Errorf("Red luminance: got %v, expected ~76", g)
	}
	// Green: 0.587*255 = 149.7
	if g := gray[5][6]; g < 140 || g > 160 {
		t.Errorf("Green luminance: got %v, expected ~150", g)
	}
	// Blue: 0.114*255 = 29.1
	if g := gray[5][7]; g < 25 || g > 35 {
		t.Errorf("Blue luminance: got %v, expected ~29", g)
	}
}

func TestGrayscale_RespectsBoundsOffset(t *testing.T) {
	// SubImage keeps the parent's coordinate space; Grayscale must
	// normalize to 0-based plane indices.
	parent := createTestImage(20, 20, color.White)
	sub := parent.SubImage(image.Rect(5, 5, 15, 15))

	gray := Grayscale(sub)

	if gray.Width() != 10 || gray.Height() != 10 {
		t.Fatalf("Plane size: got %dx%d, want 10x10", gray.Width(), gray.Height())
	}
	if gray[0][0] < 250 {
		t.Errorf("Expected white sample at origin, got %v", gray[0][0])
	}
}

func TestBlur3_UniformPlane(t *testing.T) {
	p := NewPlane(20, 20)
	for y := range p {
		for x := range p[y] {
			p[y][x] = 128
		}
	}

	blurred := p.Blur3()

	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			if math.Abs(blurred[y][x]-128) > 1e-9 {
				t.Fatalf("Uniform plane changed at (%d,%d): got %v", x, y, blurred[y][x])
			}
		}
	}
}

func TestBlur3_SpreadsSpike(t *testing.T) {
	p := NewPlane(9, 9)
	p[4][4] = 255

	blurred := p.Blur3()

	// Center weight 4/16, orthogonal neighbors 2/16, diagonals 1/16.
	if math.Abs(blurred[4][4]-255.0*4/16) > 1e-9 {
		t.Errorf("Center: got %v, want %v", blurred[4][4], 255.0*4/16)
	}
	if math.Abs(blurred[4][5]-255.0*2/16) > 1e-9 {
		t.Errorf("Orthogonal neighbor: got %v, want %v", blurred[4][5], 255.0*2/16)
	}
	if math.Abs(blurred[5][5]-255.0*1/16) > 1e-9 {
		t.Errorf("Diagonal neighbor: got %v, want %v", blurred[5][5], 255.0*1/16)
	}
	if blurred[0][0] != 0 {
		t.Errorf("Distant sample should stay zero, got %v", blurred[0][0])
	}
}

func TestSobelMagnitude_VerticalStep(t *testing.T) {
	p := NewPlane(50, 20)
	for y := range p {
		for x := 25; x < 50; x++ {
			p[y][x] = 255
		}
	}

	mag := p.SobelMagnitude()

	// The two columns straddling the step see the full gradient 4*255.
	if math.Abs(mag[10][24]-1020) > 1e-6 {
		t.Errorf("Magnitude at step: got %v, want 1020", mag[10][24])
	}
	if math.Abs(mag[10][25]-1020) > 1e-6 {
		t.Errorf("Magnitude at step: got %v, want 1020", mag[10][25])
	}
	if mag[10][10] != 0 {
		t.Errorf("Flat region should have zero gradient, got %v", mag[10][10])
	}
	if mag[10][40] != 0 {
		t.Errorf("Flat region should have zero gradient, got %v", mag[10][40])
	}
}

func TestSobelMagnitude_UniformPlane(t *testing.T) {
	p := NewPlane(30, 30)
	for y := range p {
		for x := range p[y] {
			p[y][x] = 200
		}
	}

	mag := p.SobelMagnitude()

	count := 0
	for y := range mag {
		for x := range mag[y] {
			if mag[y][x] != 0 {
				count++
			}
		}
	}
	if count != 0 {
		t.Errorf("Uniform plane should have 0 gradient samples, got %d nonzero", count)
	}
}

func TestThreshold(t *testing.T) {
	p := NewPlane(4, 1)
	p[0][0] = 0
	p[0][1] = 40
	p[0][2] = 40.0001
	p[0][3] = 255

	bits := p.Threshold(40)

	want := []bool{false, false, true, true}
	for x, w := range want {
		if bits[0][x] != w {
			t.Errorf("Threshold at %d: got %v, want %v", x, bits[0][x], w)
		}
	}
}

func TestPipeline_StepImageProducesEdges(t *testing.T) {
	img := createStepImage(60, 40, 30)

	edges := Grayscale(img).Blur3().SobelMagnitude().Threshold(40)

	if edges.Width() != 60 || edges.Height() != 40 {
		t.Fatalf("Edge map size: got %dx%d, want 60x40", edges.Width(), edges.Height())
	}

	// Edge pixels cluster around x=30, none in the flat halves.
	found := false
	for y := 2; y < 38; y++ {
		for x := 27; x <= 33; x++ {
			if edges[y][x] {
				found = true
			}
		}
		if edges[y][5] || edges[y][55] {
			t.Fatalf("Unexpected edge in flat region at row %d", y)
		}
	}
	if !found {
		t.Error("Expected edge pixels along the luminance step")
	}
}

func TestClamp(t *testing.T) {
	if clamp(-3, 0, 10) != 0 {
		t.Error("clamp should raise values below min")
	}
	if clamp(15, 0, 10) != 10 {
		t.Error("clamp should lower values above max")
	}
	if clamp(7, 0, 10) != 7 {
		t.Error("clamp should pass through in-range values")
	}
}
