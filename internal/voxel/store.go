package voxel

import (
	"sync"

	"github.com/annel0/mmo-game/internal/block"
)

// Store owns every chunk currently in memory, split into an
// intrusive "loaded" set (reachable by position, in use) and a "free"
// list of chunks available for recycling. A chunk may move to free
// once no Index covers it and its own ref count has dropped to zero
// (Store.CanUnload checks this; Store.Unload moves it).
type Store struct {
	mu       sync.RWMutex
	registry *block.Registry
	loaded   map[ChunkPos]*Chunk
	free     []*Chunk
	indices  []*Index
}

func NewStore(registry *block.Registry) *Store {
	return &Store{registry: registry, loaded: make(map[ChunkPos]*Chunk)}
}

// Get returns the loaded chunk at pos, if any.
func (s *Store) Get(pos ChunkPos) (*Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.loaded[pos]
	return c, ok
}

// Allocate returns a chunk for pos, reusing a free chunk (clearing its
// neighbors and position) if one is available, else allocating a new
// one. The chunk is linked to any already-loaded neighbors.
func (s *Store) Allocate(pos ChunkPos) *Chunk {
	s.mu.Lock()
	if c, ok := s.loaded[pos]; ok {
		s.mu.Unlock()
		return c
	}
	var c *Chunk
	if n := len(s.free); n > 0 {
		c = s.free[n-1]
		s.free = s.free[:n-1]
		c.Reset(pos)
	} else {
		c = NewChunk(pos, s.registry)
	}
	s.loaded[pos] = c
	s.mu.Unlock()

	for _, f := range block.AllFaces {
		dx, dy, dz := f.Normal()
		np := ChunkPos{pos.X + dx, pos.Y + dy, pos.Z + dz}
		if nc, ok := s.Get(np); ok {
			c.SetNeighbor(f, nc)
		}
	}
	return c
}

// Unload detaches a chunk from the loaded set and its neighbors,
// moving it to the free list. Callers must ensure nothing still holds
// a strong reference (RefCount() == 0) and no index covers it.
func (s *Store) Unload(pos ChunkPos) {
	s.mu.Lock()
	c, ok := s.loaded[pos]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.loaded, pos)
	s.free = append(s.free, c)
	s.mu.Unlock()

	for _, f := range block.AllFaces {
		c.UnsetNeighbor(f)
	}
}

// CanUnload reports whether pos is safe to unload: loaded, unreferenced,
// and not covered by any registered index.
func (s *Store) CanUnload(pos ChunkPos) bool {
	c, ok := s.Get(pos)
	if !ok {
		return false
	}
	if c.RefCount() > 0 {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, idx := range s.indices {
		if idx.Contains(pos) {
			return false
		}
	}
	return true
}

func (s *Store) registerIndex(idx *Index) {
	s.mu.Lock()
	s.indices = append(s.indices, idx)
	s.mu.Unlock()
}

// Loaded returns a snapshot slice of every currently loaded chunk
// position.
func (s *Store) Loaded() []ChunkPos {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ChunkPos, 0, len(s.loaded))
	for p := range s.loaded {
		out = append(out, p)
	}
	return out
}
