package liveness

import (
	"math"
	"time"

	"github.com/framelock/capture-engine/internal/landmark"
)

// Stage is one step of the head-turn challenge.
type Stage int

const (
	StageCenter Stage = iota
	StageLeft
	StageRight
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageCenter:
		return "center"
	case StageLeft:
		return "left"
	case StageRight:
		return "right"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// Instruction is the guidance shown to the subject for the current frame.
type Instruction int

const (
	InstructionNone Instruction = iota
	InstructionCenterFace
	InstructionLookStraight
	InstructionMoveCloser
	InstructionTurnLeft
	InstructionTurnRight
	InstructionHoldStill
	InstructionNoFace
)

func (i Instruction) String() string {
	switch i {
	case InstructionNone:
		return ""
	case InstructionCenterFace:
		return "Center your face in the circle"
	case InstructionLookStraight:
		return "Look straight at the camera"
	case InstructionMoveCloser:
		return "Move closer"
	case InstructionTurnLeft:
		return "Turn your head to the left"
	case InstructionTurnRight:
		return "Turn your head to the right"
	case InstructionHoldStill:
		return "Hold still and look straight"
	case InstructionNoFace:
		return "No face detected, position your face in view"
	default:
		return ""
	}
}

// MultiFacePolicy decides how frames with several detected faces are
// treated.
type MultiFacePolicy int

const (
	// MultiFaceTreatAsNoFace rejects ambiguous frames outright.
	MultiFaceTreatAsNoFace MultiFacePolicy = iota
	// MultiFaceUsePrimary proceeds with the highest-scoring face.
	MultiFaceUsePrimary
)

// NoFacePolicy decides what happens to accumulated holds when the face
// disappears for longer than the grace window.
type NoFacePolicy int

const (
	// NoFacePreserveHolds keeps the run; the subject resumes where they
	// were.
	NoFacePreserveHolds NoFacePolicy = iota
	// NoFaceResetHolds clears the current stage's run.
	NoFaceResetHolds
)

// Config holds the challenge thresholds. All yaw values are in the
// estimator's normalized units, positions and sizes are frame-normalized.
type Config struct {
	// HoldFrames is the consecutive satisfying frames required per stage.
	HoldFrames int `json:"hold_frames"`

	// CenterMaxAbsYaw bounds |yaw| while centering.
	CenterMaxAbsYaw float64 `json:"center_max_abs_yaw"`

	// TurnYaw is the magnitude the yaw must exceed during LEFT and RIGHT.
	TurnYaw float64 `json:"turn_yaw"`

	// RecenterMaxAbsYaw bounds |yaw| during DONE, slightly looser than
	// centering.
	RecenterMaxAbsYaw float64 `json:"recenter_max_abs_yaw"`

	// GuideCenterX, GuideCenterY and GuideRadius describe the on-screen
	// guide circle the face must sit inside while centering.
	GuideCenterX float64 `json:"guide_center_x"`
	GuideCenterY float64 `json:"guide_center_y"`
	GuideRadius  float64 `json:"guide_radius"`

	// MinFaceWidth is the smallest acceptable normalized face width
	// during the turn stages.
	MinFaceWidth float64 `json:"min_face_width"`

	// NoFaceGrace is how long the face may vanish before the subject is
	// told to reposition.
	NoFaceGrace time.Duration `json:"no_face_grace"`

	MultiFace MultiFacePolicy `json:"multi_face"`
	NoFace    NoFacePolicy    `json:"no_face"`
}

// DefaultConfig returns the production challenge profile.
func DefaultConfig() Config {
	return Config{
		HoldFrames:        12,
		CenterMaxAbsYaw:   0.05,
		TurnYaw:           0.08,
		RecenterMaxAbsYaw: 0.08,
		GuideCenterX:      0.5,
		GuideCenterY:      0.5,
		GuideRadius:       0.35,
		MinFaceWidth:      0.12,
		NoFaceGrace:       2 * time.Second,
		MultiFace:         MultiFaceTreatAsNoFace,
		NoFace:            NoFacePreserveHolds,
	}
}

// Status reports the machine's view of one frame.
type Status struct {
	Stage       Stage       `json:"stage"`
	Hold        int         `json:"hold"`
	Required    int         `json:"required"`
	Instruction Instruction `json:"instruction"`
	Completed   bool        `json:"completed"`

	// Trigger is set on exactly one status per session: the frame whose
	// hold completes the DONE stage.
	Trigger bool `json:"trigger"`
}

// Machine is the head-turn challenge state machine. Frames flow in through
// Update; the machine never advances without a usable pose. Not safe for
// concurrent use.
type Machine struct {
	cfg Config
	est Estimator

	stage     Stage
	hold      int
	completed bool
	triggered bool
	lastSeen  time.Time
}

// NewMachine builds a machine, clamping a degenerate hold requirement.
func NewMachine(cfg Config) *Machine {
	if cfg.HoldFrames < 1 {
		cfg.HoldFrames = 1
	}
	return &Machine{cfg: cfg, est: NewEstimator()}
}

// Update feeds one frame's landmark outcome into the challenge. now is the
// frame timestamp; it only matters for the no-face grace window.
func (m *Machine) Update(res *landmark.Result, now time.Time) Status {
	set := m.usableSet(res)
	if set == nil {
		return m.noFace(now)
	}
	m.lastSeen = now

	yaw, ok := m.est.Yaw(set)
	if !ok {
		// Face without a usable pose: neither progress nor violation.
		return m.status(InstructionNone)
	}

	switch m.stage {
	case StageCenter:
		return m.stepCenter(set, yaw)
	case StageLeft:
		return m.stepTurn(set, yaw, -1)
	case StageRight:
		return m.stepTurn(set, yaw, +1)
	default:
		return m.stepDone(yaw)
	}
}

// ValidateManualCapture re-checks the subject's pose at request time,
// independent of stage or trigger state. It reports whether a manual
// capture may proceed and the corrective guidance when it may not.
func (m *Machine) ValidateManualCapture(res *landmark.Result) (bool, Instruction) {
	set := m.usableSet(res)
	if set == nil {
		return false, InstructionNoFace
	}
	yaw, ok := m.est.Yaw(set)
	if !ok {
		return false, InstructionNoFace
	}
	if math.Abs(yaw) >= m.cfg.RecenterMaxAbsYaw {
		return false, InstructionLookStraight
	}
	return true, InstructionNone
}

// Stage returns the current challenge stage.
func (m *Machine) Stage() Stage {
	return m.stage
}

// Completed reports whether both turn challenges have been passed.
func (m *Machine) Completed() bool {
	return m.completed
}

// Triggered reports whether the capture trigger has fired this session.
func (m *Machine) Triggered() bool {
	return m.triggered
}

// Reset returns the machine to CENTER with all holds, flags and timers
// cleared. Call it when a session restarts; it never happens implicitly.
func (m *Machine) Reset() {
	m.stage = StageCenter
	m.hold = 0
	m.completed = false
	m.triggered = false
	m.lastSeen = time.Time{}
}

// usableSet applies the multi-face policy and returns the landmark set the
// challenge should work with, nil for no usable face.
func (m *Machine) usableSet(res *landmark.Result) *landmark.Set {
	if res == nil || res.Set == nil {
		return nil
	}
	if res.Faces > 1 && m.cfg.MultiFace == MultiFaceTreatAsNoFace {
		return nil
	}
	return res.Set
}

func (m *Machine) noFace(now time.Time) Status {
	if m.lastSeen.IsZero() {
		m.lastSeen = now
	}
	if now.Sub(m.lastSeen) <= m.cfg.NoFaceGrace {
		return m.status(InstructionNone)
	}
	if m.cfg.NoFace == NoFaceResetHolds {
		m.hold = 0
	}
	return m.status(InstructionNoFace)
}

func (m *Machine) stepCenter(set *landmark.Set, yaw float64) Status {
	if !m.inGuide(set.Face) {
		m.hold = 0
		return m.status(InstructionCenterFace)
	}
	if math.Abs(yaw) >= m.cfg.CenterMaxAbsYaw {
		m.hold = 0
		return m.status(InstructionLookStraight)
	}

	m.hold++
	if m.hold >= m.cfg.HoldFrames {
		m.advance(StageLeft)
		return m.status(InstructionTurnLeft)
	}
	return m.status(InstructionLookStraight)
}

// stepTurn handles LEFT (direction -1) and RIGHT (direction +1).
func (m *Machine) stepTurn(set *landmark.Set, yaw float64, direction float64) Status {
	guidance := InstructionTurnLeft
	if direction > 0 {
		guidance = InstructionTurnRight
	}

	if set.FaceWidth() < m.cfg.MinFaceWidth {
		m.hold = 0
		return m.status(InstructionMoveCloser)
	}
	if yaw*direction <= m.cfg.TurnYaw {
		m.hold = 0
		return m.status(guidance)
	}

	m.hold++
	if m.hold >= m.cfg.HoldFrames {
		if m.stage == StageLeft {
			m.advance(StageRight)
			return m.status(InstructionTurnRight)
		}
		m.completed = true
		m.advance(StageDone)
		return m.status(InstructionHoldStill)
	}
	return m.status(guidance)
}

func (m *Machine) stepDone(yaw float64) Status {
	if m.triggered {
		return m.status(InstructionNone)
	}

	if math.Abs(yaw) >= m.cfg.RecenterMaxAbsYaw {
		m.hold = 0
		return m.status(InstructionHoldStill)
	}

	m.hold++
	if m.hold >= m.cfg.HoldFrames {
		m.triggered = true
		st := m.status(InstructionNone)
		st.Trigger = true
		return st
	}
	return m.status(InstructionHoldStill)
}

func (m *Machine) advance(next Stage) {
	m.stage = next
	m.hold = 0
}

func (m *Machine) status(instr Instruction) Status {
	return Status{
		Stage:       m.stage,
		Hold:        m.hold,
		Required:    m.cfg.HoldFrames,
		Instruction: instr,
		Completed:   m.completed,
	}
}

// inGuide reports whether the face box sits entirely inside the guide
// circle: its center must be close enough that the whole box fits.
func (m *Machine) inGuide(box landmark.Box) bool {
	c := box.Center()
	dist := math.Hypot(c.X-m.cfg.GuideCenterX, c.Y-m.cfg.GuideCenterY)
	halfDiag := math.Hypot(box.W, box.H) / 2
	return dist+halfDiag <= m.cfg.GuideRadius
}
