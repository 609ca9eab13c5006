package doctext

import (
	"image"
	"image/color"
	"testing"
)

func TestClassifyText_Passport(t *testing.T) {
	mrz := "P<UTOERIKSSON<<ANNA<MARIA<<<<<<<<<<<<<<<<<<<\n" +
		"L898902C36UTO7408122F1204159ZE184226B<<<<<10"
	if got := ClassifyText(mrz); got != TypePassport {
		t.Errorf("passport MRZ: got %q, want %q", got, TypePassport)
	}
}

func TestClassifyText_IDCard(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"td1 standard", "I<UTOD231458907<<<<<<<<<<<<<<<"},
		{"national id prefix", "IDD<<T220001293<<<<<<<<<<<<<<<"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyText(tt.text); got != TypeIDCard {
				t.Errorf("got %q, want %q", got, TypeIDCard)
			}
		})
	}
}

func TestClassifyText_NormalizesOCRNoise(t *testing.T) {
	// OCR output commonly lowercases and inserts spaces.
	noisy := "p<uto eriksson<<anna<maria<<<<<<<<<<<<<<<<<<<"
	if got := ClassifyText(noisy); got != TypePassport {
		t.Errorf("noisy MRZ: got %q, want %q", got, TypePassport)
	}
}

func TestClassifyText_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"prose", "IDENTITY DOCUMENTS ARE ISSUED BY THE STATE"},
		{"too short", "P<UTO"},
		{"wrong alphabet", "P<uto!!eriksson<<anna<maria???<<<<<<<<<<#####"},
		{"data line only", "L898902C36UTO7408122F1204159ZE184226B<<<<<10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyText(tt.text); got != "" {
				t.Errorf("ClassifyText(%q) = %q, want no match", tt.text, got)
			}
		})
	}
}

func TestMRZBand(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 200))
	for y := 0; y < 200; y++ {
		c := color.NRGBA{255, 255, 255, 255}
		if y >= 140 {
			c = color.NRGBA{0, 0, 0, 255}
		}
		for x := 0; x < 100; x++ {
			img.SetNRGBA(x, y, c)
		}
	}

	band := MRZBand(img)
	if band.Bounds().Dx() != 100 || band.Bounds().Dy() != 60 {
		t.Fatalf("band dimensions: got %dx%d, want 100x60",
			band.Bounds().Dx(), band.Bounds().Dy())
	}

	r, g, b, _ := band.At(band.Bounds().Min.X+50, band.Bounds().Min.Y+10).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("band should cover the dark bottom strip, got (%d,%d,%d)", r, g, b)
	}
}
