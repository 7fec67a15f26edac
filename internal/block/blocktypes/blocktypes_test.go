package blocktypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

func TestInstallAssignsAirToTheReservedID(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	assert.Equal(t, block.AirBlockID, ids.Air)
}

func TestInstallRegistersEveryBuiltinKindDistinctly(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)

	seen := map[block.BlockID]string{
		ids.Stone:     Stone,
		ids.Dirt:      Dirt,
		ids.Grass:     Grass,
		ids.Sand:      Sand,
		ids.Water:     Water,
		ids.DeepWater: DeepWater,
		ids.Glowstone: Glowstone,
		ids.Leaves:    Leaves,
		ids.Wood:      Wood,
	}
	assert.Len(t, seen, 9, "every non-air kind must have a distinct BlockID")

	for id, name := range seen {
		typ, ok := r.Get(id)
		require.True(t, ok, "missing registered type for %s", name)
		assert.True(t, typ.Visible, "%s should be visible", name)
	}
}

func TestGlowstoneHasLuminosity(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	typ, ok := r.Get(ids.Glowstone)
	require.True(t, ok)
	assert.Equal(t, 14, typ.Luminosity)
}

func TestWaterIsNonSolidAndNonCollidable(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	typ, ok := r.Get(ids.Water)
	require.True(t, ok)
	assert.False(t, typ.Collision)
	assert.False(t, typ.CollideBlock)
}

func TestInstallTickableRegistersOnlyLiquids(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	tick := InstallTickable(ids)

	_, ok := tick.Get(ids.Water)
	assert.True(t, ok)
	_, ok = tick.Get(ids.DeepWater)
	assert.True(t, ok)
	_, ok = tick.Get(ids.Stone)
	assert.False(t, ok)
}

func TestWaterFlowSpreadsIntoAdjacentAirOnce(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	c := voxel.NewChunk(voxel.ChunkPos{}, r)
	c.SetBlock(5, 5, 5, block.Block{Type: ids.Water})

	behavior, ok := InstallTickable(ids).Get(ids.Water)
	require.True(t, ok)

	behavior.TickUpdate(c.API(), 5, 5, 5)

	spread := 0
	offsets := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, o := range offsets {
		if c.BlockAt(5+o[0], 5+o[1], 5+o[2]).Type == ids.Water {
			spread++
		}
	}
	assert.Equal(t, 1, spread, "water should spread into exactly one adjacent air cell per tick")
}

func TestWaterFlowNeverFlowsUpward(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	c := voxel.NewChunk(voxel.ChunkPos{}, r)
	c.SetBlock(5, 5, 5, block.Block{Type: ids.Water})

	behavior, _ := InstallTickable(ids).Get(ids.Water)
	// Run repeatedly; the upward neighbor must never receive water.
	for i := 0; i < 10; i++ {
		behavior.TickUpdate(c.API(), 5, 5, 5)
	}
	assert.NotEqual(t, ids.Water, c.BlockAt(5, 6, 5).Type)
}

func TestWaterFlowNoopWithNoAdjacentAir(t *testing.T) {
	r := block.NewRegistry()
	ids := Install(r)
	c := voxel.NewChunk(voxel.ChunkPos{}, r)
	c.SetBlock(5, 5, 5, block.Block{Type: ids.Water})
	offsets := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	for _, o := range offsets {
		c.SetBlock(5+o[0], 5+o[1], 5+o[2], block.Block{Type: ids.Stone})
	}

	behavior, _ := InstallTickable(ids).Get(ids.Water)
	assert.NotPanics(t, func() { behavior.TickUpdate(c.API(), 5, 5, 5) })

	for _, o := range offsets {
		assert.Equal(t, ids.Stone, c.BlockAt(5+o[0], 5+o[1], 5+o[2]).Type)
	}
}
