// Package steering composes desired-force behaviors for
// entity-controlled motion. Grounded on the teacher's
// internal/entity/fsm.go WanderState (random drifting destination,
// re-rolled when reached or timed out) generalized from a discrete
// tile-stepping FSM to a continuous per-frame force, and extended with
// the spec's full behavior set (§4.5).
package steering

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Behavior is one bit of the controller's enabled-behavior mask.
type Behavior uint8

const (
	Halt Behavior = 1 << iota
	TargetVelocity
	Wander
	ObstacleAvoidance
	EvadeTarget
	PursueTarget
)

// RayCaster is the obstacle-avoidance behavior's view into the world:
// cast a ray and report whether (and where, with what surface normal)
// it hit something.
type RayCaster interface {
	Cast(origin, dir mgl64.Vec3, maxDist float64) (hit bool, normal mgl64.Vec3)
}

// Input is everything a controller needs to compute one frame's
// desired force.
type Input struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Forward  mgl64.Vec3 // unit vector, current facing
	Dt       float64

	TargetVelocity mgl64.Vec3 // used by TargetVelocity
	TargetPosition mgl64.Vec3 // used by Evade/PursueTarget
	TargetVel      mgl64.Vec3 // the target entity's own velocity, for lead prediction

	MaxSpeed float64
	MaxForce float64 // priority cap: total summed force never exceeds this
}

// Controller holds the enabled behavior mask and the small amount of
// state WANDER needs to persist between frames (its wander point
// drifts rather than being re-picked every frame).
type Controller struct {
	Mask Behavior

	wanderAngle float64
	rng         *rand.Rand
	caster      RayCaster
}

func NewController(mask Behavior, caster RayCaster, seed int64) *Controller {
	return &Controller{Mask: mask, caster: caster, rng: rand.New(rand.NewSource(seed))}
}

// Compute sums every enabled behavior's contribution, adding each in
// turn and stopping once the running total reaches in.MaxForce (the
// priority-cap composition spec §4.5 describes).
func (c *Controller) Compute(in Input) mgl64.Vec3 {
	var total mgl64.Vec3
	add := func(v mgl64.Vec3) bool {
		remaining := in.MaxForce - total.Len()
		if remaining <= 0 {
			return false
		}
		if n := v.Len(); n > remaining {
			v = v.Mul(remaining / n)
		}
		total = total.Add(v)
		return total.Len() < in.MaxForce
	}

	if c.Mask&Halt != 0 {
		if !add(c.halt(in)) {
			return total
		}
	}
	if c.Mask&TargetVelocity != 0 {
		if !add(c.targetVelocity(in)) {
			return total
		}
	}
	if c.Mask&ObstacleAvoidance != 0 {
		if !add(c.obstacleAvoidance(in)) {
			return total
		}
	}
	if c.Mask&EvadeTarget != 0 {
		if !add(c.evade(in)) {
			return total
		}
	}
	if c.Mask&PursueTarget != 0 {
		if !add(c.pursue(in)) {
			return total
		}
	}
	if c.Mask&Wander != 0 {
		add(c.wander(in))
	}
	return total
}

func (c *Controller) halt(in Input) mgl64.Vec3 {
	return in.Velocity.Mul(-1)
}

func (c *Controller) targetVelocity(in Input) mgl64.Vec3 {
	return in.TargetVelocity.Sub(in.Velocity)
}

// wander picks a point on a small sphere projected ahead of the
// entity, jittering its angle each frame by an amount proportional to
// dt so the wander target drifts smoothly rather than teleporting.
func (c *Controller) wander(in Input) mgl64.Vec3 {
	const (
		wanderRadius  = 1.2
		wanderAhead   = 2.0
		jitterPerSec  = 2.0
	)
	c.wanderAngle += (c.rng.Float64()*2 - 1) * jitterPerSec * in.Dt

	center := in.Position.Add(in.Forward.Mul(wanderAhead))
	offset := mgl64.Vec3{
		math.Cos(c.wanderAngle) * wanderRadius,
		0,
		math.Sin(c.wanderAngle) * wanderRadius,
	}
	target := center.Add(offset)
	return target.Sub(in.Position)
}

// obstacleAvoidance casts a ray one second of travel ahead; on a hit,
// steers away along the surface normal.
func (c *Controller) obstacleAvoidance(in Input) mgl64.Vec3 {
	if c.caster == nil {
		return mgl64.Vec3{}
	}
	travel := in.Velocity.Len()
	if travel == 0 {
		return mgl64.Vec3{}
	}
	dir := in.Velocity.Mul(1 / travel)
	hit, normal := c.caster.Cast(in.Position, dir, travel)
	if !hit {
		return mgl64.Vec3{}
	}
	return normal.Mul(travel)
}

// leadTime scales how far ahead of a target's current position to
// predict, proportional to distance (closing faster needs less lead).
func leadTime(distance float64) float64 {
	const speedEstimate = 4.0
	return distance / speedEstimate
}

func (c *Controller) predictedTarget(in Input) mgl64.Vec3 {
	distance := in.TargetPosition.Sub(in.Position).Len()
	tau := leadTime(distance)
	return in.TargetPosition.Add(in.TargetVel.Mul(tau))
}

func (c *Controller) pursue(in Input) mgl64.Vec3 {
	return c.predictedTarget(in).Sub(in.Position)
}

func (c *Controller) evade(in Input) mgl64.Vec3 {
	return in.Position.Sub(c.predictedTarget(in))
}
