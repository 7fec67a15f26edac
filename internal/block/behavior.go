package block

// API is the narrow surface a block's tick/place/break behavior gets
// to mutate the world through, keeping behaviors decoupled from the
// concrete chunk/world types (mirrors the teacher's BlockAPI split
// between behavior and storage).
type API interface {
	GetBlock(x, y, z int) Block
	SetBlock(x, y, z int, b Block)
	GetMetadata(x, y, z int, key string) (interface{}, bool)
	SetMetadata(x, y, z int, key string, value interface{})
}

// Behavior is implemented by block kinds that need scripted
// per-tick logic (the spec's "generation parameters" plus the
// teacher's TickUpdate/OnPlace/OnBreak hooks). Most kinds need none of
// this and simply aren't registered against TickRegistry.
type Behavior interface {
	TickUpdate(api API, x, y, z int)
}

// TickRegistry maps a BlockID to its scripted behavior, kept separate
// from Type so the hot SetBlock/BlockAt path never touches an
// interface unless the cell is actually tickable.
type TickRegistry struct {
	behaviors map[BlockID]Behavior
}

func NewTickRegistry() *TickRegistry { return &TickRegistry{behaviors: make(map[BlockID]Behavior)} }

func (r *TickRegistry) Register(id BlockID, b Behavior) { r.behaviors[id] = b }

func (r *TickRegistry) Get(id BlockID) (Behavior, bool) {
	b, ok := r.behaviors[id]
	return b, ok
}
