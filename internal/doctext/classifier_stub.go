//go:build !ocr

package doctext

// Classifier is the no-OCR placeholder. Every Classify call reports
// ErrUnavailable; build with -tags ocr for the Tesseract-backed
// implementation.
type Classifier struct {
	Language string
}

// NewClassifier returns the placeholder classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify always fails with ErrUnavailable.
func (c *Classifier) Classify([]byte) (string, error) {
	return "", ErrUnavailable
}
