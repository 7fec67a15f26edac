package steering

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

type stubCaster struct {
	hit    bool
	normal mgl64.Vec3
}

func (s stubCaster) Cast(origin, dir mgl64.Vec3, maxDist float64) (bool, mgl64.Vec3) {
	return s.hit, s.normal
}

func TestComputeWithNoBehaviorsIsZero(t *testing.T) {
	c := NewController(0, nil, 1)
	out := c.Compute(Input{MaxForce: 10})
	assert.Equal(t, mgl64.Vec3{}, out)
}

func TestComputeHaltOpposesCurrentVelocity(t *testing.T) {
	c := NewController(Halt, nil, 1)
	out := c.Compute(Input{Velocity: mgl64.Vec3{3, 0, 0}, MaxForce: 10})
	assert.InDelta(t, -3, out[0], 1e-9)
}

func TestComputeTargetVelocitySeeksDifference(t *testing.T) {
	c := NewController(TargetVelocity, nil, 1)
	out := c.Compute(Input{
		Velocity:       mgl64.Vec3{1, 0, 0},
		TargetVelocity: mgl64.Vec3{4, 0, 0},
		MaxForce:       10,
	})
	assert.InDelta(t, 3, out[0], 1e-9)
}

func TestComputeClampsTotalToMaxForce(t *testing.T) {
	c := NewController(Halt, nil, 1)
	out := c.Compute(Input{Velocity: mgl64.Vec3{100, 0, 0}, MaxForce: 5})
	assert.InDelta(t, 5, out.Len(), 1e-9)
}

func TestComputeStopsAddingOnceMaxForceReached(t *testing.T) {
	c := NewController(Halt|TargetVelocity, nil, 1)
	out := c.Compute(Input{
		Velocity:       mgl64.Vec3{5, 0, 0},
		TargetVelocity: mgl64.Vec3{100, 0, 0},
		MaxForce:       5,
	})
	assert.InDelta(t, 5, out.Len(), 1e-6)
}

func TestObstacleAvoidanceNoopWithoutCaster(t *testing.T) {
	c := NewController(ObstacleAvoidance, nil, 1)
	out := c.Compute(Input{Velocity: mgl64.Vec3{1, 0, 0}, MaxForce: 10})
	assert.Equal(t, mgl64.Vec3{}, out)
}

func TestObstacleAvoidanceNoopWithZeroVelocity(t *testing.T) {
	c := NewController(ObstacleAvoidance, stubCaster{hit: true, normal: mgl64.Vec3{0, 1, 0}}, 1)
	out := c.Compute(Input{MaxForce: 10})
	assert.Equal(t, mgl64.Vec3{}, out)
}

func TestObstacleAvoidanceSteersAlongNormalOnHit(t *testing.T) {
	c := NewController(ObstacleAvoidance, stubCaster{hit: true, normal: mgl64.Vec3{0, 1, 0}}, 1)
	out := c.Compute(Input{Velocity: mgl64.Vec3{2, 0, 0}, MaxForce: 10})
	assert.InDelta(t, 2, out[1], 1e-9)
}

func TestPursueSeeksPredictedTargetPosition(t *testing.T) {
	c := NewController(PursueTarget, nil, 1)
	out := c.Compute(Input{
		Position:       mgl64.Vec3{0, 0, 0},
		TargetPosition: mgl64.Vec3{10, 0, 0},
		TargetVel:      mgl64.Vec3{},
		MaxForce:       100,
	})
	assert.InDelta(t, 10, out[0], 1e-9)
}

func TestEvadeFleesPredictedTargetPosition(t *testing.T) {
	c := NewController(EvadeTarget, nil, 1)
	out := c.Compute(Input{
		Position:       mgl64.Vec3{0, 0, 0},
		TargetPosition: mgl64.Vec3{10, 0, 0},
		TargetVel:      mgl64.Vec3{},
		MaxForce:       100,
	})
	assert.InDelta(t, -10, out[0], 1e-9)
}

func TestWanderProducesNonZeroForceTowardAheadPoint(t *testing.T) {
	c := NewController(Wander, nil, 42)
	out := c.Compute(Input{
		Position: mgl64.Vec3{0, 0, 0},
		Forward:  mgl64.Vec3{0, 0, 1},
		Dt:       0.1,
		MaxForce: 100,
	})
	assert.Greater(t, out.Len(), 0.0)
}

func TestLeadTimeScalesWithDistance(t *testing.T) {
	assert.InDelta(t, 1, leadTime(4), 1e-9)
	assert.InDelta(t, 2, leadTime(8), 1e-9)
	assert.Equal(t, 0.0, leadTime(0))
}
