package landmark

import "image"

// Point is a 2D location normalized to the frame, both axes in [0, 1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is a normalized axis-aligned region with X, Y at its top-left.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the box midpoint.
func (b Box) Center() Point {
	return Point{X: b.X + b.W/2, Y: b.Y + b.H/2}
}

// Set holds the named landmarks of one face. All coordinates are
// normalized to the frame.
type Set struct {
	LeftEyeOuter  Point `json:"left_eye_outer"`
	RightEyeOuter Point `json:"right_eye_outer"`
	NoseBridge    Point `json:"nose_bridge"`
	Face          Box   `json:"face"`
}

// FaceWidth returns the normalized width of the face region.
func (s *Set) FaceWidth() float64 {
	return s.Face.W
}

// Result is one frame's landmark outcome. Set is nil when no usable face
// was located; Faces carries the raw detection count so policy decisions
// about multiple faces stay with the caller.
type Result struct {
	Set   *Set `json:"set,omitempty"`
	Faces int  `json:"faces"`
}

// Source produces landmarks frame by frame.
type Source interface {
	// Landmarks analyzes one frame. A frame without a usable face returns
	// a Result with a nil Set and no error; errors are reserved for
	// detector failures.
	Landmarks(img image.Image) (*Result, error)

	// Close releases detector resources. Safe to call once analysis is
	// finished; sources without resources return nil.
	Close() error
}
