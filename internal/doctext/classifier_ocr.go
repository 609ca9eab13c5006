//go:build ocr

package doctext

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// Classifier recognizes the MRZ of an encoded document image with
// Tesseract and maps it to a document type tag.
type Classifier struct {
	// Language is the Tesseract language code, "eng" by default. MRZ
	// glyphs are a subset of the Latin alphabet, so the English model
	// is sufficient.
	Language string
}

// NewClassifier returns a Tesseract-backed classifier.
func NewClassifier() *Classifier {
	return &Classifier{Language: "eng"}
}

// Classify decodes the capture, reads its MRZ band, and returns the
// document type tag. An unreadable or absent MRZ is an error; the
// caller decides whether an untagged capture is acceptable.
func (c *Classifier) Classify(jpegData []byte) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return "", fmt.Errorf("failed to decode capture: %w", err)
	}

	var band bytes.Buffer
	if err := png.Encode(&band, MRZBand(img)); err != nil {
		return "", fmt.Errorf("failed to encode mrz band: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := c.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetWhitelist("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789<"); err != nil {
		return "", fmt.Errorf("failed to set whitelist: %w", err)
	}
	if err := client.SetImageFromBytes(band.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	tag := ClassifyText(text)
	if tag == "" {
		return "", fmt.Errorf("no machine readable zone recognized")
	}
	return tag, nil
}
