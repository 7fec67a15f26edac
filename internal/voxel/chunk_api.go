package voxel

import "github.com/annel0/mmo-game/internal/block"

// chunkAPI adapts a *Chunk to block.API, the narrow surface scripted
// block behaviors mutate the world through (spec's supplemented
// per-block tick behavior feature).
type chunkAPI struct{ c *Chunk }

func (a chunkAPI) GetBlock(x, y, z int) block.Block { return a.c.BlockAt(x, y, z) }
func (a chunkAPI) SetBlock(x, y, z int, b block.Block) { a.c.SetBlock(x, y, z, b) }
func (a chunkAPI) GetMetadata(x, y, z int, key string) (interface{}, bool) {
	return a.c.GetMetadata(x, y, z, key)
}
func (a chunkAPI) SetMetadata(x, y, z int, key string, value interface{}) {
	a.c.SetMetadata(x, y, z, key, value)
}

// API returns a block.API view onto this chunk, for driving scripted
// per-block tick behavior against it.
func (c *Chunk) API() block.API { return chunkAPI{c: c} }
