// Package liveness drives the head-turn challenge that gates face capture.
//
// A lightweight pose estimate is derived from three landmarks: yaw is the
// horizontal offset of the nose bridge from the eye midline, normalized by
// the inter-eye distance. That single number is enough to verify the
// subject can turn their head on request, which screens out printed photos
// and most replayed stills.
//
// The Machine walks CENTER, LEFT, RIGHT, DONE. Each stage requires its
// condition to hold for a consecutive run of frames; one violating frame
// clears the run. After both turns the subject recenters and the capture
// trigger fires exactly once. The machine never advances on a frame
// without a usable pose, and a configurable grace window decides how
// no-face gaps affect accumulated holds.
package liveness
