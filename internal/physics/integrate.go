// Package physics integrates entity motion and resolves collisions
// against the voxel world. Grounded on the teacher's
// internal/physics/collision.go for the broad idea of a box collider
// tested against block positions, generalized from its 2D point-
// sampling approach to the spec's 3D AABB-vs-shape narrow phase (the
// teacher has no integrator at all — the fixed-tick RK4 step and
// quaternion exponential-map rotation are new, following the style of
// small, free-function physics helpers rather than a physics-engine
// object).
package physics

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Params bounds one entity's motion response: how fast it accelerates
// toward TargetVel, and the hard force cap from spec §4.4 step 1.
type Params struct {
	ResponseTime float64 // seconds
	ForceCap     float64 // m/s^2
}

// CalculateForce returns the acceleration to apply this sub-step:
// acceleration toward target velocity (clamped to ForceCap) plus any
// already-summed gravity contribution.
func CalculateForce(velocity, targetVel mgl64.Vec3, p Params, gravity mgl64.Vec3) mgl64.Vec3 {
	accel := targetVel.Sub(velocity)
	if p.ResponseTime > 0 {
		accel = accel.Mul(1 / p.ResponseTime)
	}
	if n := accel.Len(); n > p.ForceCap && n > 0 {
		accel = accel.Mul(p.ForceCap / n)
	}
	return accel.Add(gravity)
}

// Integrate advances (position, velocity) by dt using a 4-sub-step
// Runge-Kutta-style integrator against accel, a function of
// (position, velocity) returning the instantaneous acceleration
// (CalculateForce closed over current targetVel/gravity, which the
// spec treats as constant across one tick's sub-steps).
func Integrate(pos, vel mgl64.Vec3, dt float64, accel func(p, v mgl64.Vec3) mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	type deriv struct {
		dp, dv mgl64.Vec3
	}
	eval := func(p, v mgl64.Vec3, dtStep float64, d deriv) deriv {
		np := p.Add(d.dp.Mul(dtStep))
		nv := v.Add(d.dv.Mul(dtStep))
		return deriv{dp: nv, dv: accel(np, nv)}
	}

	a := eval(pos, vel, 0, deriv{})
	b := eval(pos, vel, dt*0.5, a)
	c := eval(pos, vel, dt*0.5, b)
	d := eval(pos, vel, dt, c)

	dpdt := a.dp.Add(b.dp.Mul(2)).Add(c.dp.Mul(2)).Add(d.dp).Mul(1.0 / 6.0)
	dvdt := a.dv.Add(b.dv.Mul(2)).Add(c.dv.Mul(2)).Add(d.dv).Mul(1.0 / 6.0)

	return pos.Add(dpdt.Mul(dt)), vel.Add(dvdt.Mul(dt))
}

// IntegrateOrientation advances a quaternion by angular velocity ω
// over dt using q' = exp(½·ω·dt)·q, the closed form used whenever the
// half-angle is non-negligible (falls back to the identity rotation
// when ω is exactly zero).
func IntegrateOrientation(q mgl64.Quat, omega mgl64.Vec3, dt float64) mgl64.Quat {
	half := omega.Mul(dt * 0.5)
	theta := half.Len()
	if theta == 0 {
		return q.Normalize()
	}
	axis := half.Mul(1 / theta)
	delta := mgl64.QuatRotate(2*theta, axis) // exp(half) as an axis-angle rotation of angle 2*theta
	return delta.Mul(q).Normalize()
}

// GravityContribution returns the acceleration a single gravity-
// emitting block's field exerts on a point at distance d along
// direction dir (unit vector from block toward point): magnitude
// falls off linearly to zero at Radius, matching a short-range block
// effect rather than an inverse-square field.
func GravityContribution(strength, radius, d float64, dir mgl64.Vec3) mgl64.Vec3 {
	if d >= radius || radius <= 0 {
		return mgl64.Vec3{}
	}
	falloff := 1 - d/radius
	return dir.Mul(-strength * falloff)
}
