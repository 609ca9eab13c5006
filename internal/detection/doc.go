// Package detection locates identity documents in camera frames.
//
// The package implements the per-frame document pipeline: a luminance plane
// is blurred and gradient-thresholded into a binary edge map, connected edge
// pixels are grouped into contours by bounded flood fill, and each surviving
// contour is reduced to a convex quadrilateral candidate that is scored for
// document plausibility.
//
// # Pipeline
//
//  1. Downscale: optional analysis-resolution reduction (factor in (0,1])
//  2. Edge Map: grayscale → 3×3 blur → Sobel magnitude → threshold
//  3. Contours: bounded 4-neighborhood flood fill over edge pixels, seeded
//     on a stride grid
//  4. Area Filter: contours whose hull covers too little or too much of the
//     frame are discarded before any polygon work
//  5. Simplification: convex hull, then Douglas-Peucker with an epsilon
//     sweep seeking exactly four vertices; four extreme points as fallback
//  6. Scoring: normalizedArea·w₁ + rectangularity·w₂ across all candidates
//
// # Determinism
//
// Find is pure: identical pixels and configuration always produce identical
// results, and no state is carried between calls. Worker offload via Pool
// changes only timing, never results; stale results are dropped so that a
// consumer observes frames in strictly increasing order.
//
// # Scores
//
// Two scores exist with different jobs. The finder's candidate score ranks
// contours within a single frame. Quality is a separate pure measure of a
// quad's plausibility as a captured document (border margins, aspect ratio,
// area fraction, corner angles) and feeds the stability and capture gates
// that compare frames over time. Both are deterministic and bounded.
//
// # Coordinate System
//
// All coordinates use the standard image convention: origin at the top-left
// corner, X rightward, Y downward. Results are reported in source-frame
// coordinates even when analysis ran on a downscaled copy.
package detection
