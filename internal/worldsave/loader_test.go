package worldsave

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

type stubGenerator struct {
	calls []voxel.ChunkPos
	fill  block.BlockID
}

func (g *stubGenerator) Generate(c *voxel.Chunk) {
	g.calls = append(g.calls, c.Position)
	c.SetBlock(0, 0, 0, block.Block{Type: g.fill})
}

func TestChunkLoaderGeneratesWhenNothingSaved(t *testing.T) {
	registry := block.NewRegistry()
	stone := registry.Register("stone", func(id block.BlockID) block.Type { return block.Type{Visible: true} })
	store := voxel.NewStore(registry)
	gen := &stubGenerator{fill: stone}
	loader := NewChunkLoader(t.TempDir(), store, gen)

	pos := voxel.ChunkPos{X: 1}
	c := loader.Load(pos)

	assert.Len(t, gen.calls, 1)
	assert.Equal(t, stone, c.BlockAt(0, 0, 0).Type)
	assert.True(t, c.Dirty(), "freshly generated content must be marked dirty so SaveAll persists it")
}

func TestChunkLoaderPrefersSavedChunkOverGeneration(t *testing.T) {
	registry := block.NewRegistry()
	stone := registry.Register("stone", func(id block.BlockID) block.Type { return block.Type{Visible: true} })
	root := t.TempDir()
	pos := voxel.ChunkPos{X: 3}

	saved := voxel.NewChunk(pos, registry)
	saved.SetBlock(0, 0, 0, block.Block{Type: stone})
	require.NoError(t, SaveChunk(root, saved))

	store := voxel.NewStore(registry)
	gen := &stubGenerator{fill: stone}
	loader := NewChunkLoader(root, store, gen)

	c := loader.Load(pos)

	assert.Empty(t, gen.calls, "generator must not run when a save file exists")
	assert.Equal(t, stone, c.BlockAt(0, 0, 0).Type)
}

func TestChunkLoaderSaveSkipsCleanChunks(t *testing.T) {
	registry := block.NewRegistry()
	root := t.TempDir()
	pos := voxel.ChunkPos{X: 9}
	c := voxel.NewChunk(pos, registry)
	c.ClearDirty()

	loader := NewChunkLoader(root, voxel.NewStore(registry), &stubGenerator{})
	require.NoError(t, loader.Save(c))

	assert.False(t, HasChunk(root, pos))
}

func TestChunkLoaderSaveAllPersistsEveryDirtyLoadedChunk(t *testing.T) {
	registry := block.NewRegistry()
	stone := registry.Register("stone", func(id block.BlockID) block.Type { return block.Type{Visible: true} })
	root := t.TempDir()
	store := voxel.NewStore(registry)
	gen := &stubGenerator{fill: stone}
	loader := NewChunkLoader(root, store, gen)

	loader.Load(voxel.ChunkPos{X: 1})
	loader.Load(voxel.ChunkPos{X: 2})

	require.NoError(t, loader.SaveAll())

	assert.True(t, HasChunk(root, voxel.ChunkPos{X: 1}))
	assert.True(t, HasChunk(root, voxel.ChunkPos{X: 2}))
}
