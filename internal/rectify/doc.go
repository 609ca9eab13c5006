// Package rectify flattens a detected document quadrilateral into an
// upright rectangular image ready for upload.
//
// The output size derives from the quad itself: width is the longer of the
// top and bottom sides, height the longer of the left and right sides, so
// the least-foreshortened edges set the resolution. A true projective warp
// maps the quad onto that rectangle; when the corner geometry is too
// degenerate to solve, a bounding-box crop stands in as a degraded
// fallback and the result records which method produced it.
//
// Output is JPEG-compressed at a configurable quality (default 92).
package rectify
