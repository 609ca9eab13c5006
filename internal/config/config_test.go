package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesEngine(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2, cfg.FrameSkip)
	assert.Equal(t, 0.7, cfg.CaptureQuality)
	assert.Equal(t, 2500*time.Millisecond, cfg.Cooldown)
	assert.Equal(t, 8*time.Second, cfg.ModelInitTimeout)
	require.NoError(t, Validate(cfg))
}

func TestProfile_StrictTightens(t *testing.T) {
	lenient, err := Profile("lenient")
	require.NoError(t, err)
	strict, err := Profile("strict")
	require.NoError(t, err)

	assert.Greater(t, strict.Detection.EdgeThreshold, lenient.Detection.EdgeThreshold)
	assert.Greater(t, strict.Detection.MinAreaFrac, lenient.Detection.MinAreaFrac)
	assert.Less(t, strict.Detection.MaxAreaFrac, lenient.Detection.MaxAreaFrac)
	assert.Greater(t, strict.Detection.MinScore, lenient.Detection.MinScore)
	assert.Greater(t, strict.CaptureQuality, lenient.CaptureQuality)
	assert.Greater(t, strict.Stability.AcceptQuality, lenient.Stability.AcceptQuality)

	require.NoError(t, Validate(strict))
}

func TestProfile_NamesForDefault(t *testing.T) {
	want := Default()
	for _, name := range []string{"", "default", "lenient", "LENIENT"} {
		got, err := Profile(name)
		require.NoError(t, err, "profile %q", name)
		assert.Equal(t, want, got, "profile %q", name)
	}
}

func TestProfile_Unknown(t *testing.T) {
	_, err := Profile("paranoid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paranoid")
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv(EnvEdgeThreshold, "45")
	t.Setenv(EnvFrameSkip, "4")
	t.Setenv(EnvCooldown, "3s")
	t.Setenv(EnvCaptureQuality, "0.8")
	t.Setenv(EnvJPEGQuality, "85")
	t.Setenv(EnvHoldFrames, "8")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 45.0, cfg.Detection.EdgeThreshold)
	assert.Equal(t, 4, cfg.FrameSkip)
	assert.Equal(t, 3*time.Second, cfg.Cooldown)
	assert.Equal(t, 0.8, cfg.CaptureQuality)
	assert.Equal(t, 85, cfg.Rectify.JPEGQuality)
	assert.Equal(t, 8, cfg.Liveness.HoldFrames)

	// Untouched knobs keep their profile values.
	assert.Equal(t, Default().Detection.Downscale, cfg.Detection.Downscale)
}

func TestFromEnv_ProfileVariable(t *testing.T) {
	t.Setenv(EnvProfile, "strict")
	t.Setenv(EnvEdgeThreshold, "60")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 60.0, cfg.Detection.EdgeThreshold, "env overrides the profile value")
	assert.Equal(t, 0.10, cfg.Detection.MinAreaFrac, "other strict values stay")
}

func TestFromEnv_UnknownProfile(t *testing.T) {
	t.Setenv(EnvProfile, "bogus")
	_, err := FromEnv()
	require.Error(t, err)
}

func TestFromEnv_MalformedValue(t *testing.T) {
	t.Setenv(EnvEdgeThreshold, "potato")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvEdgeThreshold)
	assert.Contains(t, err.Error(), "potato")
}

func TestFromEnv_OutOfRange(t *testing.T) {
	t.Setenv(EnvDownscale, "1.5")
	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDownscale)
}

func TestFromEnv_CollectsAllOffenders(t *testing.T) {
	t.Setenv(EnvDownscale, "5")
	t.Setenv(EnvJPEGQuality, "500")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDownscale)
	assert.Contains(t, err.Error(), EnvJPEGQuality)
}

func TestValidate_AreaBandOrder(t *testing.T) {
	cfg := Default()
	cfg.Detection.MinAreaFrac = 0.9
	cfg.Detection.MaxAreaFrac = 0.2

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvMinAreaFrac)
}

func TestValidate_HighQualityBelowAccept(t *testing.T) {
	cfg := Default()
	cfg.Stability.AcceptQuality = 0.9
	cfg.Stability.HighQuality = 0.5

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvHighQuality)
}

func TestLoad_EnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "FRAMELOCK_FRAME_SKIP=5\nFRAMELOCK_CAPTURE_QUALITY=0.9\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Cleanup(func() {
		os.Unsetenv(EnvFrameSkip)
		os.Unsetenv(EnvCaptureQuality)
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.FrameSkip)
	assert.Equal(t, 0.9, cfg.CaptureQuality)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
}

func TestLoad_EmptyPathSkipsDotenv(t *testing.T) {
	t.Setenv(EnvFrameSkip, "7")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.FrameSkip)
}
