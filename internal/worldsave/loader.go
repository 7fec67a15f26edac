package worldsave

import (
	"log"

	"github.com/annel0/mmo-game/internal/voxel"
)

// Generator is the subset of worldgen.Generator the loader needs,
// kept as an interface so worldsave doesn't import worldgen (the
// dependency runs the other way: cmd/server wires both together).
type Generator interface {
	Generate(c *voxel.Chunk)
}

// ChunkLoader fills an Index's missing slots by preferring a saved
// chunk over fresh generation, mirroring the teacher's
// LoadAndApplyChunk fallback-to-empty pattern but falling back to the
// generator instead of an empty delta.
type ChunkLoader struct {
	root  string
	store *voxel.Store
	gen   Generator
}

func NewChunkLoader(root string, store *voxel.Store, gen Generator) *ChunkLoader {
	return &ChunkLoader{root: root, store: store, gen: gen}
}

// Load returns the chunk at pos, populated from disk if a save file
// exists, else freshly generated and left for a later Save to
// persist.
func (l *ChunkLoader) Load(pos voxel.ChunkPos) *voxel.Chunk {
	c := l.store.Allocate(pos)
	found, err := LoadChunk(l.root, pos, c)
	if err != nil {
		log.Printf("worldsave: load chunk %v: %v", pos, err)
		found = false
	}
	if !found {
		l.gen.Generate(c)
		// Leave dirty: fresh content has never been written to disk,
		// so the next SaveAll must persist it.
	}
	return c
}

// Save persists c if it has unsaved edits.
func (l *ChunkLoader) Save(c *voxel.Chunk) error {
	if !c.Dirty() {
		return nil
	}
	if err := SaveChunk(l.root, c); err != nil {
		return err
	}
	c.ClearDirty()
	return nil
}

// SaveAll persists every loaded, dirty chunk in the store.
func (l *ChunkLoader) SaveAll() error {
	for _, pos := range l.store.Loaded() {
		c, ok := l.store.Get(pos)
		if !ok {
			continue
		}
		if err := l.Save(c); err != nil {
			return err
		}
	}
	return nil
}
