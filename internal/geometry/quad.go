package geometry

import (
	"math"
	"sort"
)

// Quad represents a convex quadrilateral with corners held in canonical
// order: top-left, top-right, bottom-right, bottom-left as seen on screen.
//
// Use OrderCorners to build a Quad from corners in arbitrary order; the
// field names are only meaningful once that ordering has been applied.
type Quad struct {
	TopLeft     Point `json:"top_left"`
	TopRight    Point `json:"top_right"`
	BottomRight Point `json:"bottom_right"`
	BottomLeft  Point `json:"bottom_left"`
}

// OrderCorners arranges the four corners of a convex quadrilateral into
// canonical top-left, top-right, bottom-right, bottom-left order.
//
// The rule sorts the corners by y, splits them into a top pair and a bottom
// pair, and sorts each pair by x. The result depends only on the set of
// corners, never on their input order, and always satisfies
//
//	TopLeft.Y ≤ BottomLeft.Y    TopLeft.X ≤ TopRight.X
//	TopRight.Y ≤ BottomRight.Y  BottomLeft.X ≤ BottomRight.X
//
// Ties on y are broken by x, so the ordering is fully deterministic. For a
// convex quadrilateral the two lowest corners are always adjacent on the
// hull, which keeps the canonical labeling a simple (non-crossing) cycle.
func OrderCorners(pts [4]Point) Quad {
	ordered := pts[:]
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Y != ordered[j].Y {
			return ordered[i].Y < ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	tl, tr := ordered[0], ordered[1]
	if tr.X < tl.X {
		tl, tr = tr, tl
	}
	bl, br := ordered[2], ordered[3]
	if br.X < bl.X {
		bl, br = br, bl
	}

	return Quad{
		TopLeft:     tl,
		TopRight:    tr,
		BottomRight: br,
		BottomLeft:  bl,
	}
}

// Corners returns the four corners in canonical order.
func (q Quad) Corners() [4]Point {
	return [4]Point{q.TopLeft, q.TopRight, q.BottomRight, q.BottomLeft}
}

// SideLengths returns the four side lengths in canonical order:
// top, right, bottom, left.
func (q Quad) SideLengths() (top, right, bottom, left float64) {
	top = Dist(q.TopLeft, q.TopRight)
	right = Dist(q.TopRight, q.BottomRight)
	bottom = Dist(q.BottomRight, q.BottomLeft)
	left = Dist(q.BottomLeft, q.TopLeft)
	return top, right, bottom, left
}

// Area returns the quadrilateral's area via the shoelace formula.
func (q Quad) Area() float64 {
	c := q.Corners()
	sum := 0.0
	for i := 0; i < 4; i++ {
		j := (i + 1) % 4
		sum += c[i].X*c[j].Y - c[j].X*c[i].Y
	}
	return math.Abs(sum) / 2
}

// Center returns the centroid of the four corners.
func (q Quad) Center() Point {
	c := q.Corners()
	return Point{
		X: (c[0].X + c[1].X + c[2].X + c[3].X) / 4,
		Y: (c[0].Y + c[1].Y + c[2].Y + c[3].Y) / 4,
	}
}

// BoundingBox returns the axis-aligned bounding box of the corners as its
// minimum and maximum points.
func (q Quad) BoundingBox() (min, max Point) {
	c := q.Corners()
	min, max = c[0], c[0]
	for _, p := range c[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// InteriorAngles returns the interior angle at each corner in degrees, in
// canonical corner order.
func (q Quad) InteriorAngles() [4]float64 {
	c := q.Corners()
	var angles [4]float64
	for i := range c {
		angles[i] = angleAt(c[i], c[(i+3)%4], c[(i+1)%4])
	}
	return angles
}

// AngleRegularity measures how close the corner angles are to right angles.
//
// A perfect rectangle scores 1.0. The score decreases linearly with the
// total angular deviation and is clamped to [0, 1]:
//
//	score = 1 - Σ|angle - 90°| / 360°
func (q Quad) AngleRegularity() float64 {
	total := 0.0
	for _, a := range q.InteriorAngles() {
		total += math.Abs(a - 90)
	}
	score := 1 - total/360
	if score < 0 {
		return 0
	}
	return score
}

// AspectRatio returns the width-to-height ratio computed from the averaged
// opposing side lengths. Returns 0 when both vertical sides are degenerate.
func (q Quad) AspectRatio() float64 {
	top, right, bottom, left := q.SideLengths()
	h := (left + right) / 2
	if h == 0 {
		return 0
	}
	return (top + bottom) / 2 / h
}

// IsConvex reports whether the corners form a strictly convex quadrilateral.
// Quads with collinear or coincident corners are not convex.
func (q Quad) IsConvex() bool {
	c := q.Corners()
	sign := 0
	for i := 0; i < 4; i++ {
		cr := cross(c[i], c[(i+1)%4], c[(i+2)%4])
		if cr == 0 {
			return false
		}
		s := 1
		if cr < 0 {
			s = -1
		}
		if sign == 0 {
			sign = s
		} else if s != sign {
			return false
		}
	}
	return true
}

// Scale returns the quad with every coordinate multiplied by f. Used to map
// corners found on a downscaled analysis frame back onto the source frame.
func (q Quad) Scale(f float64) Quad {
	return Quad{
		TopLeft:     Point{X: q.TopLeft.X * f, Y: q.TopLeft.Y * f},
		TopRight:    Point{X: q.TopRight.X * f, Y: q.TopRight.Y * f},
		BottomRight: Point{X: q.BottomRight.X * f, Y: q.BottomRight.Y * f},
		BottomLeft:  Point{X: q.BottomLeft.X * f, Y: q.BottomLeft.Y * f},
	}
}

// Blend interpolates each corner pair of two quads: t=0 returns q, t=1
// returns other.
func (q Quad) Blend(other Quad, t float64) Quad {
	return Quad{
		TopLeft:     Lerp(q.TopLeft, other.TopLeft, t),
		TopRight:    Lerp(q.TopRight, other.TopRight, t),
		BottomRight: Lerp(q.BottomRight, other.BottomRight, t),
		BottomLeft:  Lerp(q.BottomLeft, other.BottomLeft, t),
	}
}

// MaxCornerDistance returns the largest displacement between corresponding
// corners of two quads compared in canonical order.
func MaxCornerDistance(a, b Quad) float64 {
	ac, bc := a.Corners(), b.Corners()
	max := 0.0
	for i := range ac {
		if d := Dist(ac[i], bc[i]); d > max {
			max = d
		}
	}
	return max
}

// angleAt returns the angle in degrees between the rays v→a and v→b.
func angleAt(v, a, b Point) float64 {
	ax, ay := a.X-v.X, a.Y-v.Y
	bx, by := b.X-v.X, b.Y-v.Y
	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la == 0 || lb == 0 {
		return 0
	}
	cos := (ax*bx + ay*by) / (la * lb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
