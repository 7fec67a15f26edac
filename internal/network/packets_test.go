package network

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/entity"
	"github.com/annel0/mmo-game/internal/voxel"
)

func sampleState() entity.State {
	return entity.State{
		Location:    voxel.FromAbsolute(20, 64, -5),
		Orientation: mgl64.QuatIdent(),
		Pitch:       0.3,
		Yaw:         -1.2,
	}
}

func TestEncodeDecodeLoginRoundTrip(t *testing.T) {
	buf := EncodeLogin("alice")
	assert.Equal(t, "alice", DecodeLogin(buf))
}

func TestEncodeDecodeJoinRoundTrip(t *testing.T) {
	s := sampleState()
	buf := EncodeJoin(entity.ID(7), s, "overworld")

	id, got, world := DecodeJoin(buf)
	require.Equal(t, entity.ID(7), id)
	assert.Equal(t, "overworld", world)
	assertStateApprox(t, s, got)
}

func TestEncodeDecodePlayerUpdateRoundTrip(t *testing.T) {
	p := PlayerUpdatePayload{
		State:    sampleState(),
		Movement: mgl64.Vec3{1, -1, 0.5},
		Actions:  0b101,
		Slot:     3,
	}
	buf := EncodePlayerUpdate(p)
	got := DecodePlayerUpdate(buf)

	assertStateApprox(t, p.State, got.State)
	assert.InDelta(t, 1, got.Movement[0], 0.02)
	assert.InDelta(t, -1, got.Movement[1], 0.02)
	assert.InDelta(t, 0.5, got.Movement[2], 0.02)
	assert.Equal(t, p.Actions, got.Actions)
	assert.Equal(t, p.Slot, got.Slot)
}

func TestEncodeDecodeSpawnEntityRoundTrip(t *testing.T) {
	p := SpawnEntityPayload{
		ID:      entity.ID(42),
		ModelID: 9,
		State:   sampleState(),
		Bounds:  [2]mgl64.Vec3{{-0.3, 0, -0.3}, {0.3, 1.8, 0.3}},
		Flags:   1,
		Name:    "bob",
	}
	buf := EncodeSpawnEntity(p)
	got := DecodeSpawnEntity(buf)

	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.ModelID, got.ModelID)
	assert.Equal(t, p.Flags, got.Flags)
	assert.Equal(t, p.Name, got.Name)
	assertStateApprox(t, p.State, got.State)
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, p.Bounds[0][axis], got.Bounds[0][axis], 1e-5)
		assert.InDelta(t, p.Bounds[1][axis], got.Bounds[1][axis], 1e-5)
	}
}

func TestEncodeDecodeDespawnEntityRoundTrip(t *testing.T) {
	buf := EncodeDespawnEntity(entity.ID(123))
	assert.Equal(t, entity.ID(123), DecodeDespawnEntity(buf))
}

func TestEncodeDecodeEntityUpdateRoundTrip(t *testing.T) {
	base := voxel.ChunkPos{X: 1, Y: 0, Z: -1}
	entries := []EntityUpdateEntry{
		{ID: entity.ID(1), State: sampleState()},
		{ID: entity.ID(2), State: sampleState()},
	}
	buf := EncodeEntityUpdate(base, entries)
	gotBase, got := DecodeEntityUpdate(buf)

	assert.Equal(t, base, gotBase)
	require.Len(t, got, 2)
	assert.Equal(t, entries[0].ID, got[0].ID)
	assert.Equal(t, entries[1].ID, got[1].ID)
}

func TestEncodeDecodePlayerCorrectionRoundTrip(t *testing.T) {
	s := sampleState()
	buf := EncodePlayerCorrection(99, s)
	seq, got := DecodePlayerCorrection(buf)
	assert.Equal(t, uint16(99), seq)
	assertStateApprox(t, s, got)
}

func TestEncodeDecodeChunkBeginRoundTrip(t *testing.T) {
	id := uuid.New()
	coords := voxel.ChunkPos{X: 3, Y: -2, Z: 1}
	buf := EncodeChunkBegin(id, 0x1, coords, 4096)

	gotID, flags, gotCoords, size := DecodeChunkBegin(buf)
	assert.Equal(t, id, gotID)
	assert.Equal(t, uint8(0x1), flags)
	assert.Equal(t, coords, gotCoords)
	assert.Equal(t, 4096, size)
}

func TestEncodeDecodeChunkDataRoundTrip(t *testing.T) {
	id := uuid.New()
	data := []byte{1, 2, 3, 4, 5}
	buf := EncodeChunkData(id, 10, data)

	gotID, offset, gotData := DecodeChunkData(buf)
	assert.Equal(t, id, gotID)
	assert.Equal(t, 10, offset)
	assert.Equal(t, data, gotData)
}

func TestEncodeDecodeBlockUpdateRoundTrip(t *testing.T) {
	coords := voxel.ChunkPos{X: 0, Y: 0, Z: 0}
	entries := []BlockUpdateEntry{
		{Index: 5, Block: block.Block{Type: 3}},
		{Index: 17, Block: block.Block{Type: 9}},
	}
	buf := EncodeBlockUpdate(coords, entries)

	gotCoords, got := DecodeBlockUpdate(buf)
	assert.Equal(t, coords, gotCoords)
	require.Len(t, got, 2)
	assert.Equal(t, entries[0].Index, got[0].Index)
	assert.Equal(t, entries[1].Index, got[1].Index)
	assert.Equal(t, entries[0].Block.Type, got[0].Block.Type)
	assert.Equal(t, entries[1].Block.Type, got[1].Block.Type)
}

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	buf := EncodeMessage(MessageError, entity.ID(5), "bad coordinate")
	typ, referral, text := DecodeMessage(buf)
	assert.Equal(t, MessageError, typ)
	assert.Equal(t, entity.ID(5), referral)
	assert.Equal(t, "bad coordinate", text)
}

// assertStateApprox compares two packed/unpacked states within the
// precision the wire quantization actually preserves.
func assertStateApprox(t *testing.T, want, got entity.State) {
	t.Helper()
	wantAbs := want.Location.Absolute()
	gotAbs := got.Location.Absolute()
	for axis := 0; axis < 3; axis++ {
		assert.InDelta(t, wantAbs[axis], gotAbs[axis], 2e-3)
	}
	assert.InDelta(t, want.Pitch, got.Pitch, 1e-3)
	assert.InDelta(t, want.Yaw, got.Yaw, 1e-3)
}
