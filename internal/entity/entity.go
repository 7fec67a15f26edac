// Package entity implements live entities: numeric ids, transform
// state (location/velocity/orientation), and world-relative bounds.
// Grounded on the teacher's internal/entity/fsm.go for entity
// identity/Data map conventions, generalized from its 2D
// Position/Velocity pair to 3D state via go-gl/mathgl/mgl64 (borrowed
// from dantero-ps-mini-mc-go, the only example repo with a 3D vector
// library).
package entity

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/mmo-game/internal/voxel"
)

// State is an entity's simulated transform: location (chunk + exact
// block offset), linear velocity, orientation quaternion, angular
// velocity, and the pitch/yaw scalars the packet codec and input
// controller both read directly (kept alongside Orientation rather
// than derived from it, mirroring how the wire format sends them as
// independent fields).
type State struct {
	Location    voxel.ExactLocation
	Velocity    mgl64.Vec3
	Orientation mgl64.Quat
	AngularVel  mgl64.Vec3
	Pitch, Yaw  float64
}

// ID uniquely and monotonically identifies an entity within a World's
// lifetime; ids are never reused. The engine is single-threaded
// cooperative within each process (spec §5), so Entity carries no
// locking of its own — callers never touch one from more than one
// goroutine.
type ID uint64

// Entity is a live, simulated thing in the world: players, mobs,
// dropped items, anything with a transform. Bounds are a local AABB
// around State.Location's origin, in meters.
type Entity struct {
	id   ID
	name string

	Bounds     [2]mgl64.Vec3 // min,max relative to State.Location
	State      State
	TargetVel  mgl64.Vec3
	Collidable bool
	ModelID    uint16

	dead bool
	refs int32
}

func newEntity(id ID, name string) *Entity {
	return &Entity{
		id:         id,
		name:       name,
		Bounds:     [2]mgl64.Vec3{{-0.3, 0, -0.3}, {0.3, 1.8, 0.3}},
		Collidable: true,
		State:      State{Orientation: mgl64.QuatIdent()},
	}
}

func (e *Entity) ID() ID       { return e.id }
func (e *Entity) Name() string { return e.name }

func (e *Entity) Retain()          { e.refs++ }
func (e *Entity) Release() int32   { e.refs--; return e.refs }
func (e *Entity) RefCount() int32  { return e.refs }

// Kill marks the entity dead; it is reaped (removed from the world's
// live list) once its reference count reaches zero, at the top of the
// next simulation step.
func (e *Entity) Kill()      { e.dead = true }
func (e *Entity) Dead() bool { return e.dead }

// ChunkPos returns the chunk the entity currently occupies.
func (e *Entity) ChunkPos() voxel.ChunkPos { return e.State.Location.Chunk }
