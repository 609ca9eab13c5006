package geometry

import (
	"math"
	"sort"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X float64 `json:"x"` // Horizontal position (0 = leftmost)
	Y float64 `json:"y"` // Vertical position (0 = topmost)
}

// Pt is shorthand for constructing a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Lerp linearly interpolates between a and b: t=0 returns a, t=1 returns b.
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}

// cross returns the z-component of the cross product (a-o) × (b-o).
//
// In image coordinates (Y grows downward) a positive value means the turn
// o→a→b bends clockwise as seen on screen.
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// ConvexHull returns the convex hull of the given points using Andrew's
// monotone chain algorithm.
//
// The hull is returned as a closed ring without the duplicated first point,
// ordered clockwise as seen on screen (Y grows downward). Collinear points
// on the hull boundary are dropped. Inputs with fewer than three points are
// returned as a copy. The input slice is not modified.
func ConvexHull(pts []Point) []Point {
	if len(pts) < 3 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}

	sorted := make([]Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	// Lower hull
	lower := make([]Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	// Upper hull
	upper := make([]Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// Concatenate the chains, dropping each chain's final point (it repeats
	// the other chain's first point).
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

// SimplifyClosed reduces a closed ring of points using the Douglas-Peucker
// algorithm.
//
// The ring is split at its two mutually farthest vertices, the two resulting
// open chains are simplified independently, and the halves are rejoined.
// Epsilon is the maximum allowed perpendicular deviation in pixels; larger
// values remove more vertices. Rings with four or fewer points are returned
// unchanged (as a copy).
func SimplifyClosed(ring []Point, epsilon float64) []Point {
	if len(ring) <= 4 {
		out := make([]Point, len(ring))
		copy(out, ring)
		return out
	}

	// Split at the two farthest-apart vertices so each open chain spans the
	// ring's full extent.
	ai, bi := farthestPair(ring)
	if ai > bi {
		ai, bi = bi, ai
	}

	wrapped := make([]Point, 0, len(ring)-bi+ai+1)
	wrapped = append(wrapped, ring[bi:]...)
	wrapped = append(wrapped, ring[:ai+1]...)

	first := simplifyOpen(ring[ai:bi+1], epsilon)
	second := simplifyOpen(wrapped, epsilon)

	// Both chains keep their endpoints, which are the shared split vertices;
	// drop them from the second chain when rejoining.
	out := make([]Point, 0, len(first)+len(second)-2)
	out = append(out, first...)
	if len(second) > 2 {
		out = append(out, second[1:len(second)-1]...)
	}
	return out
}

// simplifyOpen runs Douglas-Peucker on an open polyline, always keeping both
// endpoints.
//
// Uses an explicit stack of index spans rather than recursion so that long
// noisy contours cannot exhaust the call stack.
func simplifyOpen(pts []Point, epsilon float64) []Point {
	if len(pts) <= 2 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}

	keep := make([]bool, len(pts))
	keep[0], keep[len(pts)-1] = true, true

	type span struct{ lo, hi int }
	stack := []span{{0, len(pts) - 1}}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		maxD, maxI := 0.0, -1
		for i := s.lo + 1; i < s.hi; i++ {
			if d := perpendicularDistance(pts[i], pts[s.lo], pts[s.hi]); d > maxD {
				maxD, maxI = d, i
			}
		}

		if maxI >= 0 && maxD > epsilon {
			keep[maxI] = true
			stack = append(stack, span{s.lo, maxI}, span{maxI, s.hi})
		}
	}

	out := make([]Point, 0, len(pts))
	for i, p := range pts {
		if keep[i] {
			out = append(out, p)
		}
	}
	return out
}

// perpendicularDistance returns the distance from p to the line through a
// and b. When a and b coincide it falls back to the point distance.
func perpendicularDistance(p, a, b Point) float64 {
	length := Dist(a, b)
	if length == 0 {
		return Dist(p, a)
	}
	return math.Abs(cross(a, b, p)) / length
}

// farthestPair approximates the two mutually farthest vertices of a ring
// with two linear sweeps: the vertex farthest from the first vertex, then
// the vertex farthest from that one. Exact for convex rings, which is what
// the quad pipeline feeds it.
func farthestPair(ring []Point) (int, int) {
	a := farthestFrom(ring, 0)
	b := farthestFrom(ring, a)
	return a, b
}

// farthestFrom returns the index of the ring vertex farthest from ring[from].
func farthestFrom(ring []Point, from int) int {
	best, bestD := from, -1.0
	for i, p := range ring {
		if d := Dist(ring[from], p); d > bestD {
			best, bestD = i, d
		}
	}
	return best
}

// RingPerimeter returns the total edge length of a closed ring, including
// the closing edge from the last vertex back to the first.
func RingPerimeter(ring []Point) float64 {
	if len(ring) < 2 {
		return 0
	}
	total := 0.0
	for i := range ring {
		total += Dist(ring[i], ring[(i+1)%len(ring)])
	}
	return total
}

// RingArea returns the area enclosed by a closed ring via the shoelace
// formula. Valid for any simple polygon; convex hulls are the usual input.
func RingArea(ring []Point) float64 {
	if len(ring) < 3 {
		return 0
	}
	sum := 0.0
	for i := range ring {
		j := (i + 1) % len(ring)
		sum += ring[i].X*ring[j].Y - ring[j].X*ring[i].Y
	}
	return math.Abs(sum) / 2
}

// ExtremeQuad picks four corner candidates from a ring using coordinate
// extremes: smallest x+y (top-left), largest x−y (top-right), largest x+y
// (bottom-right) and smallest x−y (bottom-left).
//
// This is the fallback when polygon simplification cannot reach exactly four
// vertices. For roughly upright documents the extremes coincide with the true
// corners; heavily rotated shapes degrade toward a bounding diamond.
func ExtremeQuad(ring []Point) Quad {
	tl, tr, br, bl := ring[0], ring[0], ring[0], ring[0]
	for _, p := range ring[1:] {
		if p.X+p.Y < tl.X+tl.Y {
			tl = p
		}
		if p.X-p.Y > tr.X-tr.Y {
			tr = p
		}
		if p.X+p.Y > br.X+br.Y {
			br = p
		}
		if p.X-p.Y < bl.X-bl.Y {
			bl = p
		}
	}
	return OrderCorners([4]Point{tl, tr, br, bl})
}
