package liveness

import (
	"math"

	"github.com/framelock/capture-engine/internal/landmark"
)

// Estimator derives head yaw from a landmark set.
type Estimator struct {
	// MinInterEye rejects sets whose outer eyes are closer than this
	// normalized distance, which would make the yaw quotient meaningless.
	MinInterEye float64
}

// NewEstimator returns an estimator with the production floor on eye
// spacing.
func NewEstimator() Estimator {
	return Estimator{MinInterEye: 0.001}
}

// Yaw computes the normalized head yaw:
//
//	yaw = (noseX − midpoint(outer eye Xs)) / interEyeDistance
//
// Negative values mean the head is turned to the subject's left as seen on
// screen, positive to the right, zero facing the camera. ok is false when
// the set is absent or the eye spacing is degenerate; such frames must not
// feed the state machine.
func (e Estimator) Yaw(set *landmark.Set) (yaw float64, ok bool) {
	if set == nil {
		return 0, false
	}

	dist := math.Hypot(
		set.RightEyeOuter.X-set.LeftEyeOuter.X,
		set.RightEyeOuter.Y-set.LeftEyeOuter.Y,
	)
	if dist < e.MinInterEye {
		return 0, false
	}

	mid := (set.LeftEyeOuter.X + set.RightEyeOuter.X) / 2
	return (set.NoseBridge.X - mid) / dist, true
}
