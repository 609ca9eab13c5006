package overlay

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Quality bands for the stroke ramp. Below redBelow the outline reads
// as "keep searching"; above it the hue warms toward amber and then
// edges toward green as quality climbs. Pure green is reserved for
// frames that are both high quality and stable, so the user never sees
// green on a quad that is about to be rejected.
const (
	redBelow  = 0.4
	greenFrom = 0.7
)

var (
	strokeRed   = mustHex("#d93a2b")
	strokeAmber = mustHex("#f2b02e")
	strokeGreen = mustHex("#2fbd5c")
)

// StrokeColor maps a quality score and the stability verdict onto the
// overlay ramp. Blending happens in Lab space so the perceived hue
// shifts smoothly as quality climbs; the jump to full green only
// happens once the tracker reports stable.
func StrokeColor(quality float64, stable bool) colorful.Color {
	q := quality
	if q < 0 {
		q = 0
	} else if q > 1 {
		q = 1
	}

	if stable && q >= greenFrom {
		return strokeGreen
	}
	if q < redBelow {
		return strokeRed.BlendLab(strokeAmber, q/redBelow).Clamped()
	}
	// Amber band. Drift halfway toward green at most: the last step to
	// full green is reserved for the stable verdict above.
	t := (q - redBelow) / (1 - redBelow)
	return strokeAmber.BlendLab(strokeGreen, 0.5*t).Clamped()
}

// StrokeHex is StrokeColor rendered as a "#rrggbb" string for Command.
func StrokeHex(quality float64, stable bool) string {
	return StrokeColor(quality, stable).Hex()
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
