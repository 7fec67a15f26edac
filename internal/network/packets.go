package network

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/entity"
	"github.com/annel0/mmo-game/internal/voxel"
)

// packedStateSize is the wire size of one quantized entity.State
// relative to a packet's base chunk: 3 chunk deltas (int8) + 3
// position components (uint16) + 4 orientation components (uint16) +
// pitch/yaw (uint16 each).
const packedStateSize = 3 + 3*2 + 4*2 + 2*2

// putPackedState writes a quantized State relative to base into buf,
// returning the number of bytes written.
func putPackedState(buf []byte, s entity.State, base voxel.ChunkPos) int {
	rel := s.Location.Relative(base)
	i := 0
	buf[i] = byte(QuantizeChunkDelta(rel.Chunk.X))
	buf[i+1] = byte(QuantizeChunkDelta(rel.Chunk.Y))
	buf[i+2] = byte(QuantizeChunkDelta(rel.Chunk.Z))
	i += 3
	binary.LittleEndian.PutUint16(buf[i:], QuantizePos(rel.Block[0]))
	binary.LittleEndian.PutUint16(buf[i+2:], QuantizePos(rel.Block[1]))
	binary.LittleEndian.PutUint16(buf[i+4:], QuantizePos(rel.Block[2]))
	i += 6
	binary.LittleEndian.PutUint16(buf[i:], QuantizeUnit(s.Orientation.V[0]))
	binary.LittleEndian.PutUint16(buf[i+2:], QuantizeUnit(s.Orientation.V[1]))
	binary.LittleEndian.PutUint16(buf[i+4:], QuantizeUnit(s.Orientation.V[2]))
	binary.LittleEndian.PutUint16(buf[i+6:], QuantizeUnit(s.Orientation.W))
	i += 8
	binary.LittleEndian.PutUint16(buf[i:], QuantizeAngle(s.Pitch))
	binary.LittleEndian.PutUint16(buf[i+2:], QuantizeAngle(s.Yaw))
	i += 4
	return i
}

// getPackedState is the inverse of putPackedState.
func getPackedState(buf []byte, base voxel.ChunkPos) entity.State {
	i := 0
	dx := int(int8(buf[i]))
	dy := int(int8(buf[i+1]))
	dz := int(int8(buf[i+2]))
	i += 3
	bx := DequantizePos(binary.LittleEndian.Uint16(buf[i:]))
	by := DequantizePos(binary.LittleEndian.Uint16(buf[i+2:]))
	bz := DequantizePos(binary.LittleEndian.Uint16(buf[i+4:]))
	i += 6
	qx := DequantizeUnit(binary.LittleEndian.Uint16(buf[i:]))
	qy := DequantizeUnit(binary.LittleEndian.Uint16(buf[i+2:]))
	qz := DequantizeUnit(binary.LittleEndian.Uint16(buf[i+4:]))
	qw := DequantizeUnit(binary.LittleEndian.Uint16(buf[i+6:]))
	i += 8
	pitch := DequantizeAngle(binary.LittleEndian.Uint16(buf[i:]))
	yaw := DequantizeAngle(binary.LittleEndian.Uint16(buf[i+2:]))

	loc := voxel.ExactLocation{
		Chunk: voxel.ChunkPos{X: base.X + dx, Y: base.Y + dy, Z: base.Z + dz},
		Block: [3]float64{bx, by, bz},
	}.Sanitize()
	return entity.State{
		Location:    loc,
		Orientation: mgl64.Quat{W: qw, V: mgl64.Vec3{qx, qy, qz}}.Normalize(),
		Pitch:       pitch,
		Yaw:         yaw,
	}
}

func putChunkPos(buf []byte, p voxel.ChunkPos) {
	i32 := func(v int) uint32 { return uint32(int32(v)) }
	binary.LittleEndian.PutUint32(buf[0:], i32(p.X))
	binary.LittleEndian.PutUint32(buf[4:], i32(p.Y))
	binary.LittleEndian.PutUint32(buf[8:], i32(p.Z))
}

func getChunkPos(buf []byte) voxel.ChunkPos {
	return voxel.ChunkPos{
		X: int(int32(binary.LittleEndian.Uint32(buf[0:]))),
		Y: int(int32(binary.LittleEndian.Uint32(buf[4:]))),
		Z: int(int32(binary.LittleEndian.Uint32(buf[8:]))),
	}
}

func putString(buf []byte, s string) int {
	if len(s) > 255 {
		s = s[:255]
	}
	buf[0] = byte(len(s))
	copy(buf[1:], s)
	return 1 + len(s)
}

func getString(buf []byte) (string, int) {
	n := int(buf[0])
	return string(buf[1 : 1+n]), 1 + n
}

// --- Ping / Part (empty payloads) ---

func EncodePing() []byte { return nil }
func EncodePart() []byte { return nil }

// --- Login(name) ---

func EncodeLogin(name string) []byte {
	buf := make([]byte, 1+len(name))
	putString(buf, name)
	return buf
}

func DecodeLogin(payload []byte) (name string) {
	name, _ = getString(payload)
	return name
}

// --- Join(player_id, state, world_name) ---

func EncodeJoin(playerID entity.ID, s entity.State, worldName string) []byte {
	buf := make([]byte, 8+12+1+len(worldName)+packedStateSize)
	binary.LittleEndian.PutUint64(buf[0:], uint64(playerID))
	putChunkPos(buf[8:20], s.Location.Chunk)
	n := putString(buf[20:], worldName)
	putPackedState(buf[20+n:], s, s.Location.Chunk)
	return buf[:20+n+packedStateSize]
}

func DecodeJoin(payload []byte) (playerID entity.ID, s entity.State, worldName string) {
	playerID = entity.ID(binary.LittleEndian.Uint64(payload[0:]))
	base := getChunkPos(payload[8:20])
	worldName, n := getString(payload[20:])
	s = getPackedState(payload[20+n:], base)
	return playerID, s, worldName
}

// --- PlayerUpdate(predicted_state, movement, pitch, yaw, actions, slot) ---

type PlayerUpdatePayload struct {
	State    entity.State
	Movement mgl64.Vec3 // desired movement axis input, [-1,1] per axis
	Actions  uint8       // bitmask of held action buttons
	Slot     uint8
}

func EncodePlayerUpdate(p PlayerUpdatePayload) []byte {
	base := p.State.Location.Chunk
	buf := make([]byte, 12+packedStateSize+3+1+1)
	putChunkPos(buf[0:12], base)
	off := 12 + putPackedState(buf[12:], p.State, base)
	// Movement is packed as three signed bytes in [-127,127].
	buf[off] = packSignedUnit(p.Movement[0])
	buf[off+1] = packSignedUnit(p.Movement[1])
	buf[off+2] = packSignedUnit(p.Movement[2])
	buf[off+3] = p.Actions
	buf[off+4] = p.Slot
	return buf[:off+5]
}

func DecodePlayerUpdate(payload []byte) PlayerUpdatePayload {
	base := getChunkPos(payload[0:12])
	s := getPackedState(payload[12:], base)
	off := 12 + packedStateSize
	return PlayerUpdatePayload{
		State: s,
		Movement: mgl64.Vec3{
			unpackSignedUnit(payload[off]),
			unpackSignedUnit(payload[off+1]),
			unpackSignedUnit(payload[off+2]),
		},
		Actions: payload[off+3],
		Slot:    payload[off+4],
	}
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}

func packSignedUnit(v float64) byte { return byte(int8(clampUnit(v) * 127)) }
func unpackSignedUnit(b byte) float64 { return float64(int8(b)) / 127 }

// --- SpawnEntity(id, model_id, state, bounds, flags, name) ---

type SpawnEntityPayload struct {
	ID      entity.ID
	ModelID uint16
	State   entity.State
	Bounds  [2]mgl64.Vec3
	Flags   uint8
	Name    string
}

func EncodeSpawnEntity(p SpawnEntityPayload) []byte {
	base := p.State.Location.Chunk
	buf := make([]byte, 8+2+12+packedStateSize+12*4+1+1+len(p.Name))
	i := 0
	binary.LittleEndian.PutUint64(buf[i:], uint64(p.ID))
	i += 8
	binary.LittleEndian.PutUint16(buf[i:], p.ModelID)
	i += 2
	putChunkPos(buf[i:], base)
	i += 12
	i += putPackedState(buf[i:], p.State, base)
	for axis := 0; axis < 3; axis++ {
		binary.LittleEndian.PutUint32(buf[i:], math4(p.Bounds[0][axis]))
		i += 4
	}
	for axis := 0; axis < 3; axis++ {
		binary.LittleEndian.PutUint32(buf[i:], math4(p.Bounds[1][axis]))
		i += 4
	}
	buf[i] = p.Flags
	i++
	i += putString(buf[i:], p.Name)
	return buf[:i]
}

func DecodeSpawnEntity(payload []byte) SpawnEntityPayload {
	i := 0
	id := entity.ID(binary.LittleEndian.Uint64(payload[i:]))
	i += 8
	model := binary.LittleEndian.Uint16(payload[i:])
	i += 2
	base := getChunkPos(payload[i:])
	i += 12
	s := getPackedState(payload[i:], base)
	i += packedStateSize
	var bounds [2]mgl64.Vec3
	for axis := 0; axis < 3; axis++ {
		bounds[0][axis] = unmath4(binary.LittleEndian.Uint32(payload[i:]))
		i += 4
	}
	for axis := 0; axis < 3; axis++ {
		bounds[1][axis] = unmath4(binary.LittleEndian.Uint32(payload[i:]))
		i += 4
	}
	flags := payload[i]
	i++
	name, _ := getString(payload[i:])
	return SpawnEntityPayload{ID: id, ModelID: model, State: s, Bounds: bounds, Flags: flags, Name: name}
}

// math4/unmath4 carry a float64 as raw IEEE-754 bits truncated to
// float32 precision — entity bounds don't need the quantization
// schemes used for streamed transform state, just a compact fixed
// width.
func math4(v float64) uint32   { return math.Float32bits(float32(v)) }
func unmath4(v uint32) float64 { return float64(math.Float32frombits(v)) }

// --- DespawnEntity(id) ---

func EncodeDespawnEntity(id entity.ID) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(id))
	return buf
}

func DecodeDespawnEntity(payload []byte) entity.ID {
	return entity.ID(binary.LittleEndian.Uint64(payload))
}

// --- EntityUpdate(count, chunk_base, [id, state_packed]*) ---

type EntityUpdateEntry struct {
	ID    entity.ID
	State entity.State
}

func EncodeEntityUpdate(base voxel.ChunkPos, entries []EntityUpdateEntry) []byte {
	buf := make([]byte, 2+12+len(entries)*(8+packedStateSize))
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(entries)))
	putChunkPos(buf[2:14], base)
	off := 14
	for _, e := range entries {
		binary.LittleEndian.PutUint64(buf[off:], uint64(e.ID))
		off += 8
		off += putPackedState(buf[off:], e.State, base)
	}
	return buf[:off]
}

func DecodeEntityUpdate(payload []byte) (base voxel.ChunkPos, entries []EntityUpdateEntry) {
	count := int(binary.LittleEndian.Uint16(payload[0:]))
	base = getChunkPos(payload[2:14])
	off := 14
	entries = make([]EntityUpdateEntry, 0, count)
	for k := 0; k < count; k++ {
		id := entity.ID(binary.LittleEndian.Uint64(payload[off:]))
		off += 8
		s := getPackedState(payload[off:], base)
		off += packedStateSize
		entries = append(entries, EntityUpdateEntry{ID: id, State: s})
	}
	return base, entries
}

// --- PlayerCorrection(pack_seq, state) ---

func EncodePlayerCorrection(packSeq uint16, s entity.State) []byte {
	base := s.Location.Chunk
	buf := make([]byte, 2+12+packedStateSize)
	binary.LittleEndian.PutUint16(buf[0:], packSeq)
	putChunkPos(buf[2:14], base)
	putPackedState(buf[14:], s, base)
	return buf
}

func DecodePlayerCorrection(payload []byte) (packSeq uint16, s entity.State) {
	packSeq = binary.LittleEndian.Uint16(payload[0:])
	base := getChunkPos(payload[2:14])
	s = getPackedState(payload[14:], base)
	return packSeq, s
}

// --- ChunkBegin(trans_id, flags, coords, data_size) ---

func EncodeChunkBegin(id uuid.UUID, flags uint8, coords voxel.ChunkPos, dataSize int) []byte {
	buf := make([]byte, 16+1+12+4)
	copy(buf[0:16], id[:])
	buf[16] = flags
	putChunkPos(buf[17:29], coords)
	binary.LittleEndian.PutUint32(buf[29:], uint32(dataSize))
	return buf
}

func DecodeChunkBegin(payload []byte) (id uuid.UUID, flags uint8, coords voxel.ChunkPos, dataSize int) {
	copy(id[:], payload[0:16])
	flags = payload[16]
	coords = getChunkPos(payload[17:29])
	dataSize = int(binary.LittleEndian.Uint32(payload[29:]))
	return id, flags, coords, dataSize
}

// --- ChunkData(trans_id, offset, size, bytes) ---

func EncodeChunkData(id uuid.UUID, offset int, data []byte) []byte {
	buf := make([]byte, 16+4+2+len(data))
	copy(buf[0:16], id[:])
	binary.LittleEndian.PutUint32(buf[16:], uint32(offset))
	binary.LittleEndian.PutUint16(buf[20:], uint16(len(data)))
	copy(buf[22:], data)
	return buf
}

func DecodeChunkData(payload []byte) (id uuid.UUID, offset int, data []byte) {
	copy(id[:], payload[0:16])
	offset = int(binary.LittleEndian.Uint32(payload[16:]))
	size := int(binary.LittleEndian.Uint16(payload[20:]))
	data = payload[22 : 22+size]
	return id, offset, data
}

// --- BlockUpdate(chunk_coords, count, [index, block]*) ---

type BlockUpdateEntry struct {
	Index int // cellIndex(x,y,z) into the 4096-cell chunk array
	Block block.Block
}

func EncodeBlockUpdate(coords voxel.ChunkPos, entries []BlockUpdateEntry) []byte {
	buf := make([]byte, 12+2+len(entries)*(2+4))
	putChunkPos(buf[0:12], coords)
	binary.LittleEndian.PutUint16(buf[12:], uint16(len(entries)))
	off := 14
	for _, e := range entries {
		binary.LittleEndian.PutUint16(buf[off:], uint16(e.Index))
		binary.LittleEndian.PutUint32(buf[off+2:], e.Block.Encode())
		off += 6
	}
	return buf[:off]
}

func DecodeBlockUpdate(payload []byte) (coords voxel.ChunkPos, entries []BlockUpdateEntry) {
	coords = getChunkPos(payload[0:12])
	count := int(binary.LittleEndian.Uint16(payload[12:]))
	off := 14
	entries = make([]BlockUpdateEntry, 0, count)
	for k := 0; k < count; k++ {
		idx := int(binary.LittleEndian.Uint16(payload[off:]))
		b := block.Decode(binary.LittleEndian.Uint32(payload[off+2:]))
		entries = append(entries, BlockUpdateEntry{Index: idx, Block: b})
		off += 6
	}
	return coords, entries
}

// --- Message(type, referral, text) ---

type MessageType uint8

const (
	MessageChat MessageType = iota
	MessageSystem
	MessageError
)

func EncodeMessage(typ MessageType, referral entity.ID, text string) []byte {
	buf := make([]byte, 1+8+1+len(text))
	buf[0] = byte(typ)
	binary.LittleEndian.PutUint64(buf[1:], uint64(referral))
	putString(buf[9:], text)
	return buf
}

func DecodeMessage(payload []byte) (typ MessageType, referral entity.ID, text string) {
	typ = MessageType(payload[0])
	referral = entity.ID(binary.LittleEndian.Uint64(payload[1:]))
	text, _ = getString(payload[9:])
	return typ, referral, text
}
