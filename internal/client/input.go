package client

import "github.com/go-gl/mathgl/mgl64"

// Input is the subset of per-frame player intent the client session
// samples once per fixed tick (spec §4.9 step 1). A small interface so
// the session has no dependency on any particular input backend —
// cmd/client wires a glfw-backed implementation; tests use a scripted
// one.
type Input interface {
	// Movement returns desired movement along local forward/strafe/
	// vertical axes, each clamped to [-1,1].
	Movement() mgl64.Vec3
	// Look returns the current pitch/yaw in radians.
	Look() (pitch, yaw float64)
	// Actions returns the bitmask of currently held action buttons.
	Actions() uint8
	// Slot returns the currently selected inventory slot.
	Slot() uint8
}

// StaticInput is a fixed, non-interactive Input — used by tests and by
// a headless client run that never samples real input.
type StaticInput struct {
	Move             mgl64.Vec3
	Pitch, Yaw       float64
	ActionBits, SlotN uint8
}

func (s StaticInput) Movement() mgl64.Vec3    { return s.Move }
func (s StaticInput) Look() (float64, float64) { return s.Pitch, s.Yaw }
func (s StaticInput) Actions() uint8           { return s.ActionBits }
func (s StaticInput) Slot() uint8              { return s.SlotN }
