package detection

import (
	"github.com/framelock/capture-engine/internal/geometry"
	"github.com/framelock/capture-engine/internal/imaging"
)

// findContours groups connected edge pixels into contours using bounded
// flood fill.
//
// Seeds are scanned on a stride grid for speed; the fill itself visits every
// connected pixel regardless of stride, so contours that intersect the grid
// are extracted whole. Connectivity is 4-neighborhood. Contours smaller than
// minPoints are discarded as noise.
func findContours(edges imaging.Bitmap, stride, minPoints, maxPoints int) [][]geometry.Point {
	width, height := edges.Width(), edges.Height()
	if stride < 1 {
		stride = 1
	}

	visited := make([][]bool, height)
	for y := range visited {
		visited[y] = make([]bool, width)
	}

	contours := make([][]geometry.Point, 0)
	for y := 0; y < height; y += stride {
		for x := 0; x < width; x += stride {
			if edges[y][x] && !visited[y][x] {
				contour := floodFill(edges, visited, x, y, maxPoints)
				if len(contour) >= minPoints {
					contours = append(contours, contour)
				}
			}
		}
	}
	return contours
}

// floodFill performs iterative flood fill from a starting pixel.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large contours. Marks visited pixels and collects them until maxPoints is
// reached, which bounds the worst-case cost of a single fill; a cap of zero
// or less means unbounded.
func floodFill(edges imaging.Bitmap, visited [][]bool, startX, startY, maxPoints int) []geometry.Point {
	width, height := edges.Width(), edges.Height()
	contour := make([]geometry.Point, 0, 64)

	type pixel struct{ x, y int }
	stack := []pixel{{startX, startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.x < 0 || p.x >= width || p.y < 0 || p.y >= height {
			continue
		}
		if visited[p.y][p.x] || !edges[p.y][p.x] {
			continue
		}

		visited[p.y][p.x] = true
		contour = append(contour, geometry.Pt(float64(p.x), float64(p.y)))
		if maxPoints > 0 && len(contour) >= maxPoints {
			break
		}

		// 4-connected neighbors
		stack = append(stack,
			pixel{p.x + 1, p.y},
			pixel{p.x - 1, p.y},
			pixel{p.x, p.y + 1},
			pixel{p.x, p.y - 1},
		)
	}
	return contour
}
