package voxel

// Index is a cube of chunk slots centered on a moving base position,
// addressed as a ring buffer so that sliding the cube by one chunk
// (the common case, an observer walking) only touches one face worth
// of slots instead of reallocating the whole cube.
type Index struct {
	store  *Store
	extent int
	side   int // 2*extent + 1
	base   ChunkPos
	slots  []*Chunk // side^3, ring-addressed
}

// NewIndex builds an index of the given extent around base with every
// slot initially empty; the caller drives population via Fill (or
// repeated NextMissing+setSlot through Fill) so that loading/generating
// the covered chunks can be spread over time instead of spiking at
// construction.
func NewIndex(store *Store, extent int, base ChunkPos) *Index {
	side := 2*extent + 1
	idx := &Index{
		store:  store,
		extent: extent,
		side:   side,
		base:   base,
		slots:  make([]*Chunk, side*side*side),
	}
	store.registerIndex(idx)
	return idx
}

func (idx *Index) ring(v int) int {
	return floorMod(v, idx.side)
}

func (idx *Index) slotOffset(p ChunkPos) int {
	rx := idx.ring(p.X)
	ry := idx.ring(p.Y)
	rz := idx.ring(p.Z)
	return rx + ry*idx.side + rz*idx.side*idx.side
}

func (idx *Index) setSlot(p ChunkPos, c *Chunk) {
	idx.slots[idx.slotOffset(p)] = c
}

// Contains reports whether p lies within the index's current cube.
func (idx *Index) Contains(p ChunkPos) bool {
	if absInt(p.X-idx.base.X) > idx.extent {
		return false
	}
	if absInt(p.Y-idx.base.Y) > idx.extent {
		return false
	}
	if absInt(p.Z-idx.base.Z) > idx.extent {
		return false
	}
	return true
}

// At returns the chunk at p, or nil if p is outside the index or its
// slot hasn't been filled yet.
func (idx *Index) At(p ChunkPos) *Chunk {
	if !idx.Contains(p) {
		return nil
	}
	return idx.slots[idx.slotOffset(p)]
}

// Base returns the index's current center.
func (idx *Index) Base() ChunkPos { return idx.base }

// NextMissing returns a chunk position within the cube whose slot is
// still empty (not yet allocated/generated), or false if the cube is
// fully populated.
func (idx *Index) NextMissing() (ChunkPos, bool) {
	for dz := -idx.extent; dz <= idx.extent; dz++ {
		for dy := -idx.extent; dy <= idx.extent; dy++ {
			for dx := -idx.extent; dx <= idx.extent; dx++ {
				p := ChunkPos{idx.base.X + dx, idx.base.Y + dy, idx.base.Z + dz}
				if idx.At(p) == nil {
					return p, true
				}
			}
		}
	}
	return ChunkPos{}, false
}

// Rebase moves the index's center to newBase. If the move is within
// one step per axis of the current extent's coverage (the common
// walking case), it shifts face-by-face, reusing slots still within
// the new cube and filling the newly exposed faces; allocation of
// newly exposed chunks is deferred to the caller via NextMissing so
// that generation work can be spread over ticks rather than spiking
// in one call. If the move is larger than the cube diameter, the
// index is rebuilt empty (every slot cleared) and must be refilled
// from scratch via NextMissing.
func (idx *Index) Rebase(newBase ChunkPos) {
	dx := newBase.X - idx.base.X
	dy := newBase.Y - idx.base.Y
	dz := newBase.Z - idx.base.Z
	if absInt(dx) > idx.side || absInt(dy) > idx.side || absInt(dz) > idx.side {
		for i := range idx.slots {
			idx.slots[i] = nil
		}
		idx.base = newBase
		return
	}

	old := idx.base
	idx.base = newBase
	// Evict exactly the positions the cube covered before the move
	// that fell outside the new cube; ring addressing means a stale
	// slot left in place would otherwise alias a new position.
	for dz := -idx.extent; dz <= idx.extent; dz++ {
		for dy := -idx.extent; dy <= idx.extent; dy++ {
			for dx := -idx.extent; dx <= idx.extent; dx++ {
				p := ChunkPos{old.X + dx, old.Y + dy, old.Z + dz}
				if !idx.Contains(p) {
					idx.slots[idx.slotOffset(p)] = nil
				}
			}
		}
	}
}

// Fill allocates (and, when missing, generates via gen) every empty
// slot in the cube. gen is called for chunk positions with no saved
// data; it's the caller's job (worldsave.ChunkLoader) to prefer a
// saved chunk over fresh generation.
func (idx *Index) Fill(gen func(p ChunkPos) *Chunk) {
	for idx.FillOne(gen) {
	}
}

// FillOne populates at most one missing slot, reporting whether it did
// so — lets a caller budget how much load/generate work runs per tick
// instead of draining the whole cube in one call via Fill.
func (idx *Index) FillOne(gen func(p ChunkPos) *Chunk) bool {
	p, ok := idx.NextMissing()
	if !ok {
		return false
	}
	c := gen(p)
	if c == nil {
		c = idx.store.Allocate(p)
	}
	idx.setSlot(p, c)
	return true
}
