// Package landmark names the facial reference points the liveness pipeline
// consumes and the sources that produce them.
//
// The pipeline needs very little from a face model: the two outer eye
// corners, a nose-bridge point, and the face bounding region, all
// normalized to the frame so downstream math is resolution independent.
// Any detector that can fill a Set can drive the pipeline through the
// Source interface.
//
// Two sources ship with the engine: PigoSource wraps the pure-Go pigo
// detector (face cascade, optional pupil localizer and landmark cascades),
// and ReplaySource feeds a recorded JSONL stream for offline runs and
// tests.
package landmark
