// Package stability debounces per-frame document detections into a single
// capture decision.
//
// Detections arrive once per frame and are noisy: corners jitter, quality
// fluctuates, and the document disappears for odd frames. The Tracker
// requires a run of consecutive acceptable frames before declaring the
// document stable, with higher-quality detections needing a shorter run.
// Missed frames decay the run instead of erasing it, so a single dropout
// delays a capture rather than restarting it.
//
// Smoothed corners are maintained separately for overlay rendering. They
// lag the raw detections and never influence the stability decision, which
// always works on the unsmoothed stream.
package stability
