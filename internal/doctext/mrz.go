package doctext

import (
	"errors"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Document type tags as they appear on CaptureBuffer.DocumentType.
const (
	TypePassport = "passport"
	TypeIDCard   = "id-card"
)

// ErrUnavailable reports that the binary was built without OCR
// support.
var ErrUnavailable = errors.New("ocr support not built in")

// ClassifyText scans OCR output for an MRZ line and maps its document
// code to a type tag. Passports (TD3) start with "P<"; identity cards
// (TD1) start with "I<" or a national "ID" prefix. Returns "" when no
// line looks like an MRZ.
func ClassifyText(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = normalizeMRZ(line)
		if !looksLikeMRZ(line) {
			continue
		}
		switch {
		case strings.HasPrefix(line, "P<"):
			return TypePassport
		case strings.HasPrefix(line, "I<"), strings.HasPrefix(line, "ID"):
			return TypeIDCard
		}
	}
	return ""
}

// normalizeMRZ uppercases a line and strips the spaces OCR tends to
// insert between MRZ characters.
func normalizeMRZ(line string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(line), " ", ""))
}

// looksLikeMRZ accepts lines long enough to be an MRZ row, built only
// from the MRZ alphabet, with at least one filler pair.
func looksLikeMRZ(line string) bool {
	if len(line) < 20 {
		return false
	}
	if !strings.Contains(line, "<<") {
		return false
	}
	for _, r := range line {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '<':
		default:
			return false
		}
	}
	return true
}

// MRZBand crops the bottom strip of a rectified document, where the
// machine readable zone sits. Feeding the band instead of the whole
// document keeps recognition fast and avoids false matches from the
// visual zone.
func MRZBand(img image.Image) image.Image {
	bounds := img.Bounds()
	height := bounds.Dy()
	bandTop := bounds.Min.Y + height*70/100
	return imaging.Crop(img, image.Rect(bounds.Min.X, bandTop, bounds.Max.X, bounds.Max.Y))
}
