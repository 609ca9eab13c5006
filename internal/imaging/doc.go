// Package imaging provides the raster groundwork for the capture pipeline:
// luminance planes, blur and gradient kernels, binary edge maps, frame
// downscaling, and frame loading.
//
// The detection package consumes these primitives in a fixed order:
// Grayscale → Blur3 → SobelMagnitude → Threshold. All plane operations keep
// samples on the 0..255 luminance scale and treat borders with clamped
// (replicated) edge values, so kernels never read outside the raster.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner,
// X increasing rightward and Y increasing downward. Planes and bitmaps are
// indexed row first: p[y][x].
//
// # Thread Safety
//
// FrameCache is safe for concurrent use. Plane operations allocate their
// results and never mutate their receiver, so a plane may be shared between
// goroutines once built.
//
// # Performance Considerations
//
// Per-pixel work dominates the frame budget, so callers run the pipeline on
// a bounded copy of the source frame (see Downscale) and map any resulting
// geometry back with the returned factor.
package imaging
