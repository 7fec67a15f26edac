package worldsave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

func TestHasChunkFalseWhenUnsaved(t *testing.T) {
	assert.False(t, HasChunk(t.TempDir(), voxel.ChunkPos{}))
}

func TestSaveThenLoadChunkRoundTrips(t *testing.T) {
	root := t.TempDir()
	registry := block.NewRegistry()
	stone := registry.Register("stone", func(id block.BlockID) block.Type { return block.Type{Visible: true} })
	registry.Freeze()

	pos := voxel.ChunkPos{X: 2, Y: -1, Z: 0}
	src := voxel.NewChunk(pos, registry)
	src.SetBlock(1, 2, 3, block.Block{Type: stone})

	require.NoError(t, SaveChunk(root, src))
	assert.True(t, HasChunk(root, pos))

	dst := voxel.NewChunk(pos, registry)
	found, err := LoadChunk(root, pos, dst)

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stone, dst.BlockAt(1, 2, 3).Type)
	assert.Equal(t, block.AirBlockID, dst.BlockAt(0, 0, 0).Type)
}

func TestLoadChunkMissingFileReportsNotFound(t *testing.T) {
	registry := block.NewRegistry()
	dst := voxel.NewChunk(voxel.ChunkPos{}, registry)

	found, err := LoadChunk(t.TempDir(), voxel.ChunkPos{}, dst)

	require.NoError(t, err)
	assert.False(t, found)
}
