// Package engine coordinates the capture session. One Engine owns the
// document pipeline (finder, quality, stability, rectification) and the
// liveness pipeline (pose estimation, challenge machine), advances both
// on each Tick, and reports what happened as a slice of events the host
// polls or receives over a channel from Run.
//
// The engine is single-threaded: at most one frame is in flight, and
// Tick must not be called concurrently. Hosts that read frames on a
// different goroutine use Run, which serializes everything on its
// ticker loop.
package engine
