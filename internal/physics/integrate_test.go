package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestCalculateForceSeeksTargetVelocity(t *testing.T) {
	p := Params{ResponseTime: 1, ForceCap: 100}
	accel := CalculateForce(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{2, 0, 0}, p, mgl64.Vec3{})
	assert.InDelta(t, 2, accel[0], 1e-9)
}

func TestCalculateForceClampsToForceCap(t *testing.T) {
	p := Params{ResponseTime: 1, ForceCap: 1}
	accel := CalculateForce(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0}, p, mgl64.Vec3{})
	assert.InDelta(t, 1, accel.Len(), 1e-9)
}

func TestCalculateForceAddsGravity(t *testing.T) {
	p := Params{ResponseTime: 1, ForceCap: 100}
	gravity := mgl64.Vec3{0, -9.8, 0}
	accel := CalculateForce(mgl64.Vec3{}, mgl64.Vec3{}, p, gravity)
	assert.InDelta(t, -9.8, accel[1], 1e-9)
}

func TestIntegrateConstantVelocityNoAccel(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	vel := mgl64.Vec3{1, 0, 0}
	newPos, newVel := Integrate(pos, vel, 1.0, func(p, v mgl64.Vec3) mgl64.Vec3 {
		return mgl64.Vec3{}
	})
	assert.InDelta(t, 1, newPos[0], 1e-9)
	assert.InDelta(t, 1, newVel[0], 1e-9)
}

func TestIntegrateConstantAcceleration(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	vel := mgl64.Vec3{0, 0, 0}
	g := mgl64.Vec3{0, -10, 0}
	newPos, newVel := Integrate(pos, vel, 1.0, func(p, v mgl64.Vec3) mgl64.Vec3 {
		return g
	})
	// Exact for constant acceleration: x = 1/2*a*t^2, v = a*t.
	assert.InDelta(t, -5, newPos[1], 1e-9)
	assert.InDelta(t, -10, newVel[1], 1e-9)
}

func TestIntegrateOrientationZeroOmegaIsIdentityRotation(t *testing.T) {
	q := mgl64.QuatIdent()
	out := IntegrateOrientation(q, mgl64.Vec3{}, 1.0)
	assert.InDelta(t, 1, out.W, 1e-9)
}

func TestIntegrateOrientationPreservesUnitLength(t *testing.T) {
	q := mgl64.QuatIdent()
	out := IntegrateOrientation(q, mgl64.Vec3{0, 1, 0}, 0.1)
	lenSq := out.W*out.W + out.V[0]*out.V[0] + out.V[1]*out.V[1] + out.V[2]*out.V[2]
	assert.InDelta(t, 1, lenSq, 1e-9)
}

func TestGravityContributionFallsOffToZeroAtRadius(t *testing.T) {
	dir := mgl64.Vec3{1, 0, 0}
	atEdge := GravityContribution(5, 10, 10, dir)
	assert.Equal(t, mgl64.Vec3{}, atEdge)

	atCenter := GravityContribution(5, 10, 0, dir)
	assert.InDelta(t, -5, atCenter[0], 1e-9)
}

func TestGravityContributionZeroRadiusIsNoop(t *testing.T) {
	dir := mgl64.Vec3{1, 0, 0}
	out := GravityContribution(5, 0, 1, dir)
	assert.Equal(t, mgl64.Vec3{}, out)
}

func TestOverlapOBBDetectsSeparatedBoxes(t *testing.T) {
	a := OBB{Center: mgl64.Vec3{0, 0, 0}, HalfExtents: mgl64.Vec3{1, 1, 1}, Orientation: mgl64.QuatIdent()}
	b := OBB{Center: mgl64.Vec3{10, 0, 0}, HalfExtents: mgl64.Vec3{1, 1, 1}, Orientation: mgl64.QuatIdent()}
	assert.False(t, OverlapOBB(a, b))
}

func TestOverlapOBBDetectsOverlappingBoxes(t *testing.T) {
	a := OBB{Center: mgl64.Vec3{0, 0, 0}, HalfExtents: mgl64.Vec3{1, 1, 1}, Orientation: mgl64.QuatIdent()}
	b := OBB{Center: mgl64.Vec3{1, 0, 0}, HalfExtents: mgl64.Vec3{1, 1, 1}, Orientation: mgl64.QuatIdent()}
	assert.True(t, OverlapOBB(a, b))
}
