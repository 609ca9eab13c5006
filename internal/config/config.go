package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/framelock/capture-engine/internal/detection"
	"github.com/framelock/capture-engine/internal/engine"
)

// Environment variables recognized by FromEnv. Values follow Go
// syntax: floats for thresholds, integers for counts, time.Duration
// strings ("2500ms", "8s") for durations.
const (
	EnvProfile          = "FRAMELOCK_PROFILE"
	EnvDownscale        = "FRAMELOCK_DOWNSCALE"
	EnvEdgeThreshold    = "FRAMELOCK_EDGE_THRESHOLD"
	EnvMinAreaFrac      = "FRAMELOCK_MIN_AREA_FRAC"
	EnvMaxAreaFrac      = "FRAMELOCK_MAX_AREA_FRAC"
	EnvMinScore         = "FRAMELOCK_MIN_SCORE"
	EnvAcceptQuality    = "FRAMELOCK_ACCEPT_QUALITY"
	EnvHighQuality      = "FRAMELOCK_HIGH_QUALITY"
	EnvSmoothingAlpha   = "FRAMELOCK_SMOOTHING_ALPHA"
	EnvHoldFrames       = "FRAMELOCK_HOLD_FRAMES"
	EnvTurnYaw          = "FRAMELOCK_TURN_YAW"
	EnvFrameSkip        = "FRAMELOCK_FRAME_SKIP"
	EnvCaptureQuality   = "FRAMELOCK_CAPTURE_QUALITY"
	EnvCooldown         = "FRAMELOCK_COOLDOWN"
	EnvModelInitTimeout = "FRAMELOCK_MODEL_INIT_TIMEOUT"
	EnvTickInterval     = "FRAMELOCK_TICK_INTERVAL"
	EnvJPEGQuality      = "FRAMELOCK_JPEG_QUALITY"
)

// Default returns the production configuration.
func Default() engine.Config {
	return engine.DefaultConfig()
}

// Profile returns a named preset. "lenient" (also "" and "default") is
// the production profile; "strict" tightens the edge threshold, the
// area band, and the quality floors for deployments that prefer misses
// over false positives.
func Profile(name string) (engine.Config, error) {
	switch strings.ToLower(name) {
	case "", "default", "lenient":
		return Default(), nil
	case "strict":
		cfg := Default()
		cfg.Detection = detection.StrictConfig()
		cfg.Quality = detection.StrictQualityConfig()
		cfg.Stability.AcceptQuality = 0.7
		cfg.CaptureQuality = 0.75
		return cfg, nil
	default:
		return engine.Config{}, fmt.Errorf("unknown profile %q (want strict or lenient)", name)
	}
}

// Load reads the dotenv file at path (when non-empty) into the process
// environment, then builds the configuration with FromEnv.
func Load(path string) (engine.Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return engine.Config{}, fmt.Errorf("loading env file: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds a configuration from FRAMELOCK_* variables layered on
// top of the profile named by FRAMELOCK_PROFILE. Unset variables keep
// their profile values; malformed or out-of-range values are collected
// and reported together.
func FromEnv() (engine.Config, error) {
	cfg, err := Profile(os.Getenv(EnvProfile))
	if err != nil {
		return engine.Config{}, err
	}

	p := &envParser{}
	p.float(EnvDownscale, &cfg.Detection.Downscale)
	p.float(EnvEdgeThreshold, &cfg.Detection.EdgeThreshold)
	p.float(EnvMinAreaFrac, &cfg.Detection.MinAreaFrac)
	p.float(EnvMaxAreaFrac, &cfg.Detection.MaxAreaFrac)
	p.float(EnvMinScore, &cfg.Detection.MinScore)
	p.float(EnvAcceptQuality, &cfg.Stability.AcceptQuality)
	p.float(EnvHighQuality, &cfg.Stability.HighQuality)
	p.float(EnvSmoothingAlpha, &cfg.Stability.SmoothingAlpha)
	p.int(EnvHoldFrames, &cfg.Liveness.HoldFrames)
	p.float(EnvTurnYaw, &cfg.Liveness.TurnYaw)
	p.int(EnvFrameSkip, &cfg.FrameSkip)
	p.float(EnvCaptureQuality, &cfg.CaptureQuality)
	p.duration(EnvCooldown, &cfg.Cooldown)
	p.duration(EnvModelInitTimeout, &cfg.ModelInitTimeout)
	p.duration(EnvTickInterval, &cfg.TickInterval)
	p.int(EnvJPEGQuality, &cfg.Rectify.JPEGQuality)

	if len(p.invalid) > 0 {
		return engine.Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(p.invalid, ", "))
	}
	if err := Validate(cfg); err != nil {
		return engine.Config{}, err
	}
	return cfg, nil
}

// Validate checks every tunable range and reports all offenders in one
// error.
func Validate(cfg engine.Config) error {
	var bad []string
	add := func(key, reason string) {
		bad = append(bad, fmt.Sprintf("%s (%s)", key, reason))
	}

	if cfg.Detection.Downscale <= 0 || cfg.Detection.Downscale > 1 {
		add(EnvDownscale, "want 0 < v <= 1")
	}
	if cfg.Detection.EdgeThreshold < 1 || cfg.Detection.EdgeThreshold > 255 {
		add(EnvEdgeThreshold, "want 1 <= v <= 255")
	}
	if cfg.Detection.MinAreaFrac <= 0 || cfg.Detection.MinAreaFrac >= 1 {
		add(EnvMinAreaFrac, "want 0 < v < 1")
	}
	if cfg.Detection.MaxAreaFrac <= 0 || cfg.Detection.MaxAreaFrac > 1 {
		add(EnvMaxAreaFrac, "want 0 < v <= 1")
	}
	if cfg.Detection.MinAreaFrac >= cfg.Detection.MaxAreaFrac {
		add(EnvMinAreaFrac, "must be below max area fraction")
	}
	if cfg.Detection.MinScore < 0 || cfg.Detection.MinScore >= 1 {
		add(EnvMinScore, "want 0 <= v < 1")
	}
	if cfg.Stability.AcceptQuality <= 0 || cfg.Stability.AcceptQuality > 1 {
		add(EnvAcceptQuality, "want 0 < v <= 1")
	}
	if cfg.Stability.HighQuality < cfg.Stability.AcceptQuality || cfg.Stability.HighQuality > 1 {
		add(EnvHighQuality, "want accept quality <= v <= 1")
	}
	if cfg.Stability.SmoothingAlpha <= 0 || cfg.Stability.SmoothingAlpha > 1 {
		add(EnvSmoothingAlpha, "want 0 < v <= 1")
	}
	if cfg.Liveness.HoldFrames < 1 {
		add(EnvHoldFrames, "want v >= 1")
	}
	if cfg.Liveness.TurnYaw <= 0 || cfg.Liveness.TurnYaw >= 1 {
		add(EnvTurnYaw, "want 0 < v < 1")
	}
	if cfg.FrameSkip < 0 {
		add(EnvFrameSkip, "want v >= 0")
	}
	if cfg.CaptureQuality <= 0 || cfg.CaptureQuality > 1 {
		add(EnvCaptureQuality, "want 0 < v <= 1")
	}
	if cfg.Cooldown < 0 {
		add(EnvCooldown, "want v >= 0")
	}
	if cfg.ModelInitTimeout <= 0 {
		add(EnvModelInitTimeout, "want v > 0")
	}
	if cfg.TickInterval <= 0 {
		add(EnvTickInterval, "want v > 0")
	}
	if cfg.Rectify.JPEGQuality < 1 || cfg.Rectify.JPEGQuality > 100 {
		add(EnvJPEGQuality, "want 1 <= v <= 100")
	}

	if len(bad) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(bad, ", "))
	}
	return nil
}

// envParser reads typed values from the environment, collecting the
// keys that fail to parse.
type envParser struct {
	invalid []string
}

func (p *envParser) float(key string, dst *float64) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.invalid = append(p.invalid, fmt.Sprintf("%s=%q", key, raw))
		return
	}
	*dst = v
}

func (p *envParser) int(key string, dst *int) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.invalid = append(p.invalid, fmt.Sprintf("%s=%q", key, raw))
		return
	}
	*dst = v
}

func (p *envParser) duration(key string, dst *time.Duration) {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		p.invalid = append(p.invalid, fmt.Sprintf("%s=%q", key, raw))
		return
	}
	*dst = v
}
