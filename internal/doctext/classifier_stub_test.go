//go:build !ocr

package doctext

import (
	"errors"
	"testing"
)

func TestClassifierUnavailableWithoutOCRTag(t *testing.T) {
	c := NewClassifier()
	tag, err := c.Classify([]byte{0xff, 0xd8})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if tag != "" {
		t.Errorf("unavailable classifier returned tag %q", tag)
	}
}
