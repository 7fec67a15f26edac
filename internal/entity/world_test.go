package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

func newTestWorld() *World {
	store := voxel.NewStore(block.NewRegistry())
	return NewWorld(store)
}

func TestWorldAddEntityAssignsMonotonicIDs(t *testing.T) {
	w := newTestWorld()
	a := w.AddEntity("a")
	b := w.AddEntity("b")
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Less(t, a.ID(), b.ID())
}

func TestWorldEntityLookup(t *testing.T) {
	w := newTestWorld()
	e := w.AddEntity("alice")
	got, ok := w.Entity(e.ID())
	require.True(t, ok)
	assert.Same(t, e, got)

	_, ok = w.Entity(ID(9999))
	assert.False(t, ok)
}

func TestWorldAddPlayerRegistersBothEntityAndPlayer(t *testing.T) {
	w := newTestWorld()
	p := w.AddPlayer("alice", 2)

	gotEntity, ok := w.Entity(p.ID())
	require.True(t, ok)
	assert.Same(t, p.Entity, gotEntity)

	gotPlayer, ok := w.Player(p.ID())
	require.True(t, ok)
	assert.Same(t, p, gotPlayer)
	assert.NotNil(t, p.Index)
}

func TestWorldEntitiesAscendingOrder(t *testing.T) {
	w := newTestWorld()
	first := w.AddEntity("first")
	second := w.AddEntity("second")
	third := w.AddEntity("third")

	list := w.Entities()
	require.Len(t, list, 3)
	assert.Equal(t, first.ID(), list[0].ID())
	assert.Equal(t, second.ID(), list[1].ID())
	assert.Equal(t, third.ID(), list[2].ID())
}

func TestWorldReapRemovesDeadUnreferencedEntities(t *testing.T) {
	w := newTestWorld()
	a := w.AddEntity("a")
	b := w.AddEntity("b")
	a.Kill()

	w.Reap()

	_, ok := w.Entity(a.ID())
	assert.False(t, ok)
	_, ok = w.Entity(b.ID())
	assert.True(t, ok)
	assert.Len(t, w.Entities(), 1)
}

func TestWorldReapKeepsDeadButReferencedEntities(t *testing.T) {
	w := newTestWorld()
	a := w.AddEntity("a")
	a.Retain()
	a.Kill()

	w.Reap()

	_, ok := w.Entity(a.ID())
	assert.True(t, ok, "referenced entity must survive reap even when dead")
}

func TestWorldReapRemovesPlayerEntry(t *testing.T) {
	w := newTestWorld()
	p := w.AddPlayer("alice", 1)
	p.Kill()

	w.Reap()

	_, ok := w.Player(p.ID())
	assert.False(t, ok)
}
