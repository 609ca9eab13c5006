package detection

import (
	"math"

	"github.com/framelock/capture-engine/internal/geometry"
)

// QualityConfig holds the bands, margins and weights of the document
// quality score.
type QualityConfig struct {
	// Floor is the base score granted to any detected quad.
	Floor float64 `json:"floor"`

	// MarginPx is the corner distance to the frame border required for the
	// full margin bonus; closer corners earn a proportional share.
	MarginPx float64 `json:"margin_px"`

	// AspectMin and AspectMax bound the accepted width/height ratio.
	AspectMin float64 `json:"aspect_min"`
	AspectMax float64 `json:"aspect_max"`

	// AreaMin and AreaMax bound the accepted quad area as a fraction of
	// the frame.
	AreaMin float64 `json:"area_min"`
	AreaMax float64 `json:"area_max"`

	// MarginWeight, AspectWeight, AreaWeight and AngleWeight size the
	// individual bonuses. Floor plus all weights should sum to at most 1.
	MarginWeight float64 `json:"margin_weight"`
	AspectWeight float64 `json:"aspect_weight"`
	AreaWeight   float64 `json:"area_weight"`
	AngleWeight  float64 `json:"angle_weight"`
}

// DefaultQualityConfig returns the lenient production profile.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		Floor:        0.55,
		MarginPx:     12,
		AspectMin:    0.2,
		AspectMax:    5.0,
		AreaMin:      0.05,
		AreaMax:      0.98,
		MarginWeight: 0.10,
		AspectWeight: 0.05,
		AreaWeight:   0.05,
		AngleWeight:  0.25,
	}
}

// StrictQualityConfig returns a profile with a wider required margin and a
// narrower aspect band.
func StrictQualityConfig() QualityConfig {
	cfg := DefaultQualityConfig()
	cfg.MarginPx = 20
	cfg.AspectMin = 0.4
	cfg.AspectMax = 3.0
	return cfg
}

// Quality scores a quad's plausibility as a captured document within a
// frame of the given size, in [0, 1].
//
// The score starts from a detection floor and adds bonuses for corners
// clear of the frame border, an aspect ratio inside the accepted band, an
// area fraction inside the accepted band, and corner angles close to 90°.
// Each bonus saturates, so the total never exceeds 1.
//
// Pure and deterministic: identical inputs always produce identical scores.
func Quality(q geometry.Quad, frameW, frameH int, cfg QualityConfig) float64 {
	if frameW <= 0 || frameH <= 0 {
		return 0
	}

	score := cfg.Floor

	// Margin: the closest any corner comes to the frame border, as a share
	// of the required margin. Corners outside the frame count as zero.
	minDist := math.MaxFloat64
	for _, p := range q.Corners() {
		for _, d := range [4]float64{p.X, p.Y, float64(frameW) - p.X, float64(frameH) - p.Y} {
			if d < minDist {
				minDist = d
			}
		}
	}
	if minDist < 0 {
		minDist = 0
	}
	if cfg.MarginPx > 0 {
		share := minDist / cfg.MarginPx
		if share > 1 {
			share = 1
		}
		score += cfg.MarginWeight * share
	} else {
		score += cfg.MarginWeight
	}

	if ar := q.AspectRatio(); ar >= cfg.AspectMin && ar <= cfg.AspectMax {
		score += cfg.AspectWeight
	}

	frac := q.Area() / (float64(frameW) * float64(frameH))
	if frac >= cfg.AreaMin && frac <= cfg.AreaMax {
		score += cfg.AreaWeight
	}

	score += cfg.AngleWeight * q.AngleRegularity()

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
