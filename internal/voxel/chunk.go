package voxel

import (
	"sync"

	"github.com/annel0/mmo-game/internal/block"
)

const cellCount = ChunkSize * ChunkSize * ChunkSize

func cellIndex(x, y, z int) int { return x + ChunkSize*y + ChunkSize*ChunkSize*z }

// Chunk is a 16x16x16 volume of blocks with its own light field and
// neighbor links. Neighbor links are non-owning: a chunk never frees
// or mutates a neighbor it doesn't hold the mutation right to, it
// only reads through the link during light propagation and
// obstruction queries.
type Chunk struct {
	mu        sync.RWMutex
	Position  ChunkPos
	blocks    [cellCount]block.Block
	light     [cellCount]uint8 // 0..15, logically a 4-bit field
	neighbors [6]*Chunk
	dirty     bool
	refs      int32

	// meta is lazily allocated: most cells never carry scripted-behavior
	// state, so a chunk that never calls SetMetadata never pays for it.
	meta map[int]map[string]interface{}

	registry *block.Registry
}

// NewChunk allocates a chunk filled with air at pos.
func NewChunk(pos ChunkPos, registry *block.Registry) *Chunk {
	return &Chunk{Position: pos, registry: registry}
}

// Reset clears a recycled chunk back to an air-filled, unlinked state
// at a new position — used by ChunkStore.Allocate when reusing a free
// chunk instead of allocating.
func (c *Chunk) Reset(pos ChunkPos) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Position = pos
	for i := range c.blocks {
		c.blocks[i] = block.Air
		c.light[i] = 0
	}
	for i, n := range c.neighbors {
		if n != nil {
			n.clearNeighbor(block.AllFaces[i].Opposite())
		}
		c.neighbors[i] = nil
	}
	c.dirty = false
	c.refs = 0
	c.meta = nil
}

// GetMetadata returns the scripted-behavior value stored for key at
// local coordinates, if any.
func (c *Chunk) GetMetadata(x, y, z int, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cell, ok := c.meta[cellIndex(x, y, z)]
	if !ok {
		return nil, false
	}
	v, ok := cell[key]
	return v, ok
}

// SetMetadata stores a scripted-behavior value for key at local
// coordinates, allocating the backing map on first use.
func (c *Chunk) SetMetadata(x, y, z int, key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.meta == nil {
		c.meta = make(map[int]map[string]interface{})
	}
	idx := cellIndex(x, y, z)
	cell, ok := c.meta[idx]
	if !ok {
		cell = make(map[string]interface{})
		c.meta[idx] = cell
	}
	cell[key] = value
}

func (c *Chunk) clearNeighbor(f block.Face) {
	c.mu.Lock()
	c.neighbors[f] = nil
	c.mu.Unlock()
}

// Retain/Release implement the reference count external holders
// (chunk indices, transmitters) use; a chunk becomes eligible for
// recycling by the store only once both no index references it and
// its ref count drops to zero.
func (c *Chunk) Retain() { c.mu.Lock(); c.refs++; c.mu.Unlock() }
func (c *Chunk) Release() {
	c.mu.Lock()
	if c.refs > 0 {
		c.refs--
	}
	c.mu.Unlock()
}
func (c *Chunk) RefCount() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs
}

func (c *Chunk) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

func (c *Chunk) ClearDirty() {
	c.mu.Lock()
	c.dirty = false
	c.mu.Unlock()
}

func (c *Chunk) markDirty() { c.dirty = true }

// Neighbor returns the chunk linked across face f, if any.
func (c *Chunk) Neighbor(f block.Face) *Chunk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.neighbors[f]
}

// SetNeighbor links c and n across face f (n lies in direction f from
// c). Establishing the link maintains the symmetry invariant
// (n.neighbor[opposite(f)] == c) and triggers an edge-seeded brighten
// pass from both sides so light already present on either side of the
// new seam spreads across it.
func (c *Chunk) SetNeighbor(f block.Face, n *Chunk) {
	c.mu.Lock()
	c.neighbors[f] = n
	c.mu.Unlock()
	if n != nil {
		n.mu.Lock()
		n.neighbors[f.Opposite()] = c
		n.mu.Unlock()
	}
	if n != nil {
		c.seedBoundaryLight(f, n)
	}
}

// UnsetNeighbor removes the link in both directions.
func (c *Chunk) UnsetNeighbor(f block.Face) {
	c.mu.Lock()
	n := c.neighbors[f]
	c.neighbors[f] = nil
	c.mu.Unlock()
	if n != nil {
		n.clearNeighbor(f.Opposite())
	}
}

func (c *Chunk) seedBoundaryLight(f block.Face, n *Chunk) {
	dx, dy, dz := f.Normal()
	for a := 0; a < ChunkSize; a++ {
		for b := 0; b < ChunkSize; b++ {
			cLocal, nLocal := boundaryCells(f, a, b)
			_ = dx
			_ = dy
			_ = dz
			cLevel := int(c.getLightRaw(cLocal))
			nLevel := int(n.getLightRaw(nLocal))
			if cLevel > nLevel+1 {
				n.brighten(nLocal, cLevel-1)
			} else if nLevel > cLevel+1 {
				c.brighten(cLocal, nLevel-1)
			}
		}
	}
}

// boundaryCells returns the pair of local cells on either side of the
// shared face, parameterized by the two in-plane coordinates a,b.
func boundaryCells(f block.Face, a, b int) (cLocal, nLocal [3]int) {
	switch f {
	case block.FaceRight:
		return [3]int{ChunkSize - 1, a, b}, [3]int{0, a, b}
	case block.FaceLeft:
		return [3]int{0, a, b}, [3]int{ChunkSize - 1, a, b}
	case block.FaceUp:
		return [3]int{a, ChunkSize - 1, b}, [3]int{a, 0, b}
	case block.FaceDown:
		return [3]int{a, 0, b}, [3]int{a, ChunkSize - 1, b}
	case block.FaceFront:
		return [3]int{a, b, ChunkSize - 1}, [3]int{a, b, 0}
	default: // FaceBack
		return [3]int{a, b, 0}, [3]int{a, b, ChunkSize - 1}
	}
}

func inBounds(p [3]int) bool {
	return p[0] >= 0 && p[0] < ChunkSize && p[1] >= 0 && p[1] < ChunkSize && p[2] >= 0 && p[2] < ChunkSize
}

// neighborCell resolves a local coordinate that has stepped exactly
// one cell outside [0,ChunkSize) along one axis into the neighboring
// chunk's frame. Returns ok=false if that neighbor isn't linked.
func neighborCell(c *Chunk, p [3]int, f block.Face) (*Chunk, [3]int, bool) {
	dx, dy, dz := f.Normal()
	np := [3]int{p[0] + dx, p[1] + dy, p[2] + dz}
	if inBounds(np) {
		return c, np, true
	}
	n := c.Neighbor(f)
	if n == nil {
		return nil, [3]int{}, false
	}
	// Wrap the out-of-range component back into [0,ChunkSize).
	wrapped := np
	for i := 0; i < 3; i++ {
		if wrapped[i] < 0 {
			wrapped[i] += ChunkSize
		} else if wrapped[i] >= ChunkSize {
			wrapped[i] -= ChunkSize
		}
	}
	return n, wrapped, true
}

func (c *Chunk) blockAt(p [3]int) block.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.blocks[cellIndex(p[0], p[1], p[2])]
}

func (c *Chunk) getLightRaw(p [3]int) uint8 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.light[cellIndex(p[0], p[1], p[2])]
}

func (c *Chunk) setLightRaw(p [3]int, v uint8) {
	c.mu.Lock()
	c.light[cellIndex(p[0], p[1], p[2])] = v
	c.dirty = true
	c.mu.Unlock()
}

// BlockAt returns the block at local coordinates.
func (c *Chunk) BlockAt(x, y, z int) block.Block { return c.blockAt([3]int{x, y, z}) }

// GetLight returns the light level at local coordinates.
func (c *Chunk) GetLight(x, y, z int) int { return int(c.getLightRaw([3]int{x, y, z})) }

// SetBlock places a block and incrementally repairs the light field
// per the maximum-neighbor-minus-one invariant (see package doc /
// spec §4.1): a brighten BFS when the new type is newly luminous or a
// transparency exposes a brighter neighbor, a darken BFS (followed by
// a re-brighten of surviving sources) when it newly blocks light.
func (c *Chunk) SetBlock(x, y, z int, b block.Block) {
	local := [3]int{x, y, z}
	oldBlock := c.blockAt(local)
	oldType, _ := c.registry.Get(oldBlock.Type)
	newType, _ := c.registry.Get(b.Type)

	c.mu.Lock()
	c.blocks[cellIndex(x, y, z)] = b
	c.dirty = true
	c.mu.Unlock()

	isOpaque := newType != nil && newType.BlockLight && newType.Luminosity == 0
	oldLuminosity := 0
	if oldType != nil {
		oldLuminosity = oldType.Luminosity
	}
	newLuminosity := 0
	if newType != nil {
		newLuminosity = newType.Luminosity
	}

	switch {
	case isOpaque:
		// A non-luminous opaque block blocks light outright: whatever
		// the cell was relaying is retracted. Opaque luminous blocks
		// take the cases below and emit their own level.
		old := int(c.getLightRaw(local))
		c.darken(local, old)
	case newLuminosity > 0 && newLuminosity >= oldLuminosity:
		c.brighten(local, newLuminosity)
	case oldLuminosity > newLuminosity:
		// Luminosity decreased while staying transparent — including a
		// light source being removed outright (glow -> air). The old
		// source's flood has to be retracted before any weaker
		// replacement source reseeds it, or the stale, brighter values
		// just sit there forever.
		old := int(c.getLightRaw(local))
		c.darken(local, old)
		if newLuminosity > 0 {
			c.brighten(local, newLuminosity)
		}
	default:
		// Transparent, non-luminous, luminosity unchanged: recompute
		// from neighbors. If we just turned transparent
		// (opaque->transparent), this picks up an exposed brighter
		// neighbor; if nothing changed we end up re-writing the same
		// value.
		best := 0
		for _, f := range block.AllFaces {
			nc, np, ok := neighborCell(c, local, f)
			if !ok {
				continue
			}
			lvl := int(nc.getLightRaw(np)) - 1
			if lvl > best {
				best = lvl
			}
		}
		if best > int(c.getLightRaw(local)) {
			c.brighten(local, best)
		} else if best == 0 {
			c.setLightRaw(local, 0)
		}
	}
}

type lightSeed struct {
	c     *Chunk
	p     [3]int
	level int
}

// brighten seeds a BFS from (c,local) at the given level, writing
// max(current, seed-distance) into every reached transparent cell.
func (c *Chunk) brighten(local [3]int, level int) {
	if level <= 0 {
		return
	}
	queue := []lightSeed{{c, local, level}}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		t, _ := n.c.registry.Get(n.c.blockAt(n.p).Type)
		if t != nil && t.BlockLight && t.Luminosity == 0 {
			continue // opaque, non-luminous cells never hold propagated light
		}
		cur := int(n.c.getLightRaw(n.p))
		if n.level <= cur {
			continue
		}
		n.c.setLightRaw(n.p, uint8(n.level))
		if n.level <= 1 {
			continue
		}
		for _, f := range block.AllFaces {
			nc, np, ok := neighborCell(n.c, n.p, f)
			if !ok {
				continue
			}
			queue = append(queue, lightSeed{nc, np, n.level - 1})
		}
	}
}

// darken retracts light seeded by a source that just dimmed or was
// occluded at (c,local), which previously held seedLevel. Cells
// strictly dimmer than what's being retracted are zeroed and chained
// further; cells at or above the retracted level are untouched but
// queued to reseed a brighten pass, since they're lit by another
// surviving source.
func (c *Chunk) darken(local [3]int, seedLevel int) {
	c.setLightRaw(local, 0)
	type item struct {
		c     *Chunk
		p     [3]int
		level int
	}
	queue := []item{{c, local, seedLevel}}
	var reseed []item
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, f := range block.AllFaces {
			nc, np, ok := neighborCell(n.c, n.p, f)
			if !ok {
				continue
			}
			nb := nc.blockAt(np)
			t, _ := nc.registry.Get(nb.Type)
			if t != nil && t.Luminosity > 0 {
				reseed = append(reseed, item{nc, np, t.Luminosity})
				continue
			}
			if t != nil && t.BlockLight {
				continue
			}
			cur := int(nc.getLightRaw(np))
			if cur == 0 {
				continue
			}
			if cur < n.level {
				nc.setLightRaw(np, 0)
				queue = append(queue, item{nc, np, cur})
			} else {
				reseed = append(reseed, item{nc, np, cur})
			}
		}
	}
	for _, r := range reseed {
		// A reseed cell already holds its level, so brighten would stop
		// at it; clear it first so the pass spreads back outward.
		lvl := r.level
		if cur := int(r.c.getLightRaw(r.p)); cur > lvl {
			lvl = cur
		}
		r.c.setLightRaw(r.p, 0)
		r.c.brighten(r.p, lvl)
	}
}

// IsSurface reports whether the cell at local coordinates is visible
// (non-air) and at least one of its faces is not fully obstructed.
func (c *Chunk) IsSurface(x, y, z int) bool {
	b := c.BlockAt(x, y, z)
	t, ok := c.registry.Get(b.Type)
	if !ok || !t.Visible {
		return false
	}
	return len(c.Obstructed(x, y, z)) < 6
}

// Obstructed returns the set of faces of the cell at local coordinates
// whose neighboring block shape fully covers the shared face — used
// to cull hidden faces in mesh generation.
func (c *Chunk) Obstructed(x, y, z int) map[block.Face]bool {
	out := make(map[block.Face]bool, 6)
	local := [3]int{x, y, z}
	for _, f := range block.AllFaces {
		nc, np, ok := neighborCell(c, local, f)
		if !ok {
			continue
		}
		nb := nc.blockAt(np)
		t, ok := nc.registry.Get(nb.Type)
		if !ok {
			continue
		}
		if t.Shape != nil && t.Shape.FaceFilled(nb.Orientation, f.Opposite()) {
			out[f] = true
		}
	}
	return out
}
