package entity

import (
	"github.com/annel0/mmo-game/internal/voxel"
)

// Player pairs an Entity with a ChunkIndex whose base follows the
// entity's chunk position, defining the player's interest region for
// chunk streaming and entity visibility (spec §3).
type Player struct {
	*Entity
	Index *voxel.Index
}

// World owns the monotonic id counter and the live entity/player
// lists. Reaping (removing dead, zero-ref entities) happens once per
// simulation step via Reap, matching spec §3's "removed entities are
// reaped at the top of the next simulation step".
type World struct {
	nextID  ID
	store   *voxel.Store
	entities map[ID]*Entity
	players  map[ID]*Player
	order    []ID // insertion order, kept ascending by id for EntityUpdate merge
}

func NewWorld(store *voxel.Store) *World {
	return &World{
		store:    store,
		entities: make(map[ID]*Entity),
		players:  make(map[ID]*Player),
	}
}

func (w *World) allocID() ID {
	w.nextID++
	return w.nextID
}

// AddEntity creates and registers a plain entity (no player index).
func (w *World) AddEntity(name string) *Entity {
	id := w.allocID()
	e := newEntity(id, name)
	w.entities[id] = e
	w.order = append(w.order, id)
	return e
}

// AddPlayer creates an entity plus a ChunkIndex of the given extent
// centered on its current chunk, registering both.
func (w *World) AddPlayer(name string, indexExtent int) *Player {
	e := w.AddEntity(name)
	idx := voxel.NewIndex(w.store, indexExtent, e.State.Location.Chunk)
	p := &Player{Entity: e, Index: idx}
	w.players[e.id] = p
	return p
}

// Entity looks up a live entity by id.
func (w *World) Entity(id ID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Player looks up a live player by entity id.
func (w *World) Player(id ID) (*Player, bool) {
	p, ok := w.players[id]
	return p, ok
}

// Entities returns every live entity in ascending-id order — the
// order spec §5 requires for O(n) merge against a client's known-
// entity list.
func (w *World) Entities() []*Entity {
	out := make([]*Entity, 0, len(w.order))
	for _, id := range w.order {
		if e, ok := w.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Reap removes every dead, unreferenced entity from the live lists.
// Called at the top of each simulation step.
func (w *World) Reap() {
	kept := w.order[:0]
	for _, id := range w.order {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		if e.Dead() && e.RefCount() <= 0 {
			delete(w.entities, id)
			delete(w.players, id)
			continue
		}
		kept = append(kept, id)
	}
	w.order = kept
}
