package landmark

import (
	"path/filepath"
	"testing"

	pigo "github.com/esimov/pigo/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPigoSource_RequiresFaceCascade(t *testing.T) {
	_, err := NewPigoSource(DefaultPigoConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face cascade")
}

func TestNewPigoSource_MissingCascadeFile(t *testing.T) {
	cfg := DefaultPigoConfig()
	cfg.FaceCascadePath = filepath.Join(t.TempDir(), "facefinder")

	_, err := NewPigoSource(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading face cascade")
}

func TestDefaultPigoConfig(t *testing.T) {
	cfg := DefaultPigoConfig()
	assert.Equal(t, "lp46", cfg.LandmarkName)
	assert.Equal(t, 50, cfg.Perturbs)
	assert.InDelta(t, 0.1, cfg.ShiftFactor, 1e-9)
	assert.InDelta(t, 1.1, cfg.ScaleFactor, 1e-9)
	assert.Empty(t, cfg.FaceCascadePath, "cascade locations are deployment specific")
}

func TestFaceBox_NormalizesDetection(t *testing.T) {
	det := pigo.Detection{Row: 200, Col: 300, Scale: 100}
	box := faceBox(det, 600, 400)

	assert.InDelta(t, (300.0-50)/600, box.X, 1e-9)
	assert.InDelta(t, (200.0-50)/400, box.Y, 1e-9)
	assert.InDelta(t, 100.0/600, box.W, 1e-9)
	assert.InDelta(t, 100.0/400, box.H, 1e-9)

	center := box.Center()
	assert.InDelta(t, 0.5, center.X, 1e-9)
	assert.InDelta(t, 0.5, center.Y, 1e-9)
}

func TestNormalize(t *testing.T) {
	p := normalize(300, 200, 600, 400)
	assert.InDelta(t, 0.5, p.X, 1e-9)
	assert.InDelta(t, 0.5, p.Y, 1e-9)
}
