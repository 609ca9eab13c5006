// Package geometry provides the planar primitives shared by the capture
// pipeline: points, convex quadrilaterals, hull construction and polygon
// simplification.
//
// All coordinates follow the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//
// The central type is Quad, a convex quadrilateral whose corners are held in
// canonical top-left, top-right, bottom-right, bottom-left order. Detection
// produces Quads from edge contours (ConvexHull followed by SimplifyClosed),
// and the stabilization, overlay and rectification stages consume them.
//
// Coordinates are float64 throughout: quads travel through sub-pixel stages
// such as exponential smoothing, perspective mapping and rescaling between a
// downscaled analysis frame and the full-resolution source.
package geometry
