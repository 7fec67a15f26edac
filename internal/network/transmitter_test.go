package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

func TestFragmentCountAndSlicing(t *testing.T) {
	assert.Equal(t, 0, fragmentCount(0))
	assert.Equal(t, 1, fragmentCount(1))
	assert.Equal(t, 1, fragmentCount(payloadSize))
	assert.Equal(t, 2, fragmentCount(payloadSize+1))

	payload := make([]byte, payloadSize+10)
	assert.Len(t, fragment(payload, 0), payloadSize)
	assert.Len(t, fragment(payload, 1), 10)
}

func TestTransmitterSendReceiveRoundTrip(t *testing.T) {
	registry := block.NewRegistry()
	src := voxel.NewChunk(voxel.ChunkPos{X: 1}, registry)
	stone := registry.Register("stone", func(id block.BlockID) block.Type { return block.Type{Visible: true} })
	src.SetBlock(3, 4, 5, block.Block{Type: stone})

	sender := NewTransmitter()
	id, flags, size := sender.BeginSend(src)
	assert.Equal(t, uint8(FlagCompressed), flags)
	assert.Greater(t, size, 0)

	receiver := NewTransmitter()
	dst := voxel.NewChunk(voxel.ChunkPos{X: 1}, registry)
	receiver.BeginReceive(id, flags, size, dst, time.Now())

	frags := sender.NextFragments(id)
	require.NotEmpty(t, frags)
	var done bool
	for _, f := range frags {
		done = receiver.ReceiveFragment(id, f.Offset, f.Data)
		sender.AckFragment(id, f.Index)
	}
	assert.True(t, done, "receiving the final fragment must report completion")

	require.NoError(t, receiver.Complete(id))
	sender.AckFragment(id, -1)
	assert.True(t, sender.Done(id))

	got := dst.BlockAt(3, 4, 5)
	assert.Equal(t, stone, got.Type)
}

func TestTransmitterDoneRequiresBeginAck(t *testing.T) {
	registry := block.NewRegistry()
	src := voxel.NewChunk(voxel.ChunkPos{}, registry)
	tr := NewTransmitter()
	id, _, _ := tr.BeginSend(src)

	assert.False(t, tr.Done(id), "begin packet not yet acked")
}

func TestTransmitterFragmentForSeq(t *testing.T) {
	registry := block.NewRegistry()
	src := voxel.NewChunk(voxel.ChunkPos{}, registry)
	tr := NewTransmitter()
	id, _, _ := tr.BeginSend(src)

	tr.NoteSent(id, -1, 10)
	tr.NoteSent(id, 0, 11)

	gotID, idx, ok := tr.FragmentForSeq(11)
	require.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 0, idx)

	gotID, idx, ok = tr.FragmentForSeq(10)
	require.True(t, ok)
	assert.Equal(t, id, gotID)
	assert.Equal(t, -1, idx)

	_, _, ok = tr.FragmentForSeq(999)
	assert.False(t, ok)
}

func TestTransmitterAbortReleasesTransfer(t *testing.T) {
	registry := block.NewRegistry()
	src := voxel.NewChunk(voxel.ChunkPos{}, registry)
	tr := NewTransmitter()
	id, _, _ := tr.BeginSend(src)
	assert.Equal(t, int32(1), src.RefCount())

	tr.Abort(id)
	assert.Equal(t, int32(0), src.RefCount())
	assert.True(t, tr.Done(id), "an aborted/unknown transfer reports done")
}
