package worldgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/block/blocktypes"
	"github.com/annel0/mmo-game/internal/voxel"
)

func newTestGenerator(seed int64) (*Generator, *block.Registry, blocktypes.IDs) {
	registry := block.NewRegistry()
	ids := blocktypes.Install(registry)
	return NewGenerator(seed, registry, ids), registry, ids
}

func genChunk(g *Generator, registry *block.Registry, pos voxel.ChunkPos) *voxel.Chunk {
	c := voxel.NewChunk(pos, registry)
	g.Generate(c)
	return c
}

func TestGenerateIsDeterministicForSameSeedAndPosition(t *testing.T) {
	pos := voxel.ChunkPos{X: 2, Y: 0, Z: -3}
	g1, reg1, _ := newTestGenerator(1234)
	g2, reg2, _ := newTestGenerator(1234)

	a := genChunk(g1, reg1, pos)
	b := genChunk(g2, reg2, pos)

	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				require.Equal(t, a.BlockAt(x, y, z), b.BlockAt(x, y, z), "mismatch at (%d,%d,%d)", x, y, z)
			}
		}
	}
}

func TestGenerateDiffersAcrossSeeds(t *testing.T) {
	pos := voxel.ChunkPos{X: 0, Y: 0, Z: 0}
	g1, reg1, _ := newTestGenerator(1)
	g2, reg2, _ := newTestGenerator(2)

	a := genChunk(g1, reg1, pos)
	b := genChunk(g2, reg2, pos)

	differs := false
	for z := 0; z < voxel.ChunkSize && !differs; z++ {
		for y := 0; y < voxel.ChunkSize && !differs; y++ {
			for x := 0; x < voxel.ChunkSize && !differs; x++ {
				if a.BlockAt(x, y, z) != b.BlockAt(x, y, z) {
					differs = true
				}
			}
		}
	}
	assert.True(t, differs, "different seeds should produce different terrain somewhere in the chunk")
}

func TestGenerateLeavesOpenAirWellAboveSurface(t *testing.T) {
	g, registry, ids := newTestGenerator(42)
	c := genChunk(g, registry, voxel.ChunkPos{X: 0, Y: 10, Z: 0}) // well above the nominal surface

	airCount := 0
	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				if c.BlockAt(x, y, z).Type == ids.Air {
					airCount++
				}
			}
		}
	}
	assert.Greater(t, airCount, 0, "terrain well above the surface should be mostly open air")
}
