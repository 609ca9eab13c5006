package overlay

import (
	"github.com/framelock/capture-engine/internal/geometry"
)

// Circle is a guide ring in normalized frame coordinates: (X, Y) is the
// center and R the radius, all as fractions of the frame dimensions.
type Circle struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`
}

// Command describes everything the host should draw over one preview
// frame. Outline points are in frame pixels, closed by connecting the
// last point back to the first. Stroke is a "#rrggbb" hex color.
type Command struct {
	Outline []geometry.Point `json:"outline,omitempty"`
	Stroke  string           `json:"stroke"`
	Status  string           `json:"status,omitempty"`
	Guide   *Circle          `json:"guide,omitempty"`
}

// Build composes the overlay for one frame. A nil outline quad leaves
// the polyline empty; quality and stable pick the stroke color.
func Build(outline *geometry.Quad, quality float64, stable bool, status string, guide *Circle) Command {
	cmd := Command{
		Stroke: StrokeHex(quality, stable),
		Status: status,
		Guide:  guide,
	}
	if outline != nil {
		c := outline.Corners()
		cmd.Outline = c[:]
	}
	return cmd
}
