package network

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/voxel"
)

// payloadSize is the per-fragment byte count the compressed ~4 KiB
// chunk buffer (spec §4.10) is split into. Sized to keep a whole
// ChunkData packet (header 13 + trans_id 16 + offset 4 + size 2 +
// this many data bytes) under the 500-byte packet ceiling (spec §4.6).
const payloadSize = 450

// FlagCompressed is ChunkBegin's flag bit 0: the fragmented payload is
// zlib-compressed and must be inflated once reassembled.
const FlagCompressed = 1 << 0

// outTransfer is one in-flight outbound chunk transmission: a strong
// reference on the source chunk (so it can't be recycled mid-transfer,
// per the spec's collision-avoidance recommendation) plus the
// compressed payload split into fragments, each tracked by the
// sequence number it was last sent under so a PacketLost event can
// find and retransmit exactly that fragment.
type outTransfer struct {
	id       uuid.UUID
	chunk    *voxel.Chunk
	payload  []byte
	fragSeq  map[int]uint16 // fragment index -> seq it was last sent under (begin's seq is beginSeq)
	beginSeq uint16
	acked    map[int]bool
	beginOK  bool
}

func fragmentCount(payloadLen int) int {
	if payloadLen == 0 {
		return 0
	}
	return (payloadLen + payloadSize - 1) / payloadSize
}

func fragment(payload []byte, i int) []byte {
	start := i * payloadSize
	end := start + payloadSize
	if end > len(payload) {
		end = len(payload)
	}
	return payload[start:end]
}

// Transmitter manages one peer's outbound and inbound chunk transfers.
// Grounded on the teacher's preference for small per-concern structs
// (see internal/network/metrics.go) rather than folding transfer state
// into the connection itself.
type Transmitter struct {
	out map[uuid.UUID]*outTransfer
	in  map[uuid.UUID]*inTransfer
}

func NewTransmitter() *Transmitter {
	return &Transmitter{
		out: make(map[uuid.UUID]*outTransfer),
		in:  make(map[uuid.UUID]*inTransfer),
	}
}

// BeginSend compresses c's block data and registers a new outbound
// transfer, retaining a strong reference on c for the transfer's
// lifetime. Returns the transmission id and the ChunkBegin fields to
// send.
func (t *Transmitter) BeginSend(c *voxel.Chunk) (id uuid.UUID, flags uint8, dataSize int) {
	raw := serializeChunk(c)
	compressed := compressZlib(raw)

	c.Retain()
	id = uuid.New()
	tr := &outTransfer{
		id:      id,
		chunk:   c,
		payload: compressed,
		fragSeq: make(map[int]uint16),
		acked:   make(map[int]bool),
	}
	t.out[id] = tr
	return id, FlagCompressed, len(compressed)
}

// NextFragments returns every (offset, bytes) fragment pair that has
// not yet been acked for transfer id, for the caller to package as
// ChunkData packets and send.
func (t *Transmitter) NextFragments(id uuid.UUID) []struct {
	Index  int
	Offset int
	Data   []byte
} {
	tr, ok := t.out[id]
	if !ok {
		return nil
	}
	n := fragmentCount(len(tr.payload))
	var out []struct {
		Index  int
		Offset int
		Data   []byte
	}
	for i := 0; i < n; i++ {
		if tr.acked[i] {
			continue
		}
		out = append(out, struct {
			Index  int
			Offset int
			Data   []byte
		}{Index: i, Offset: i * payloadSize, Data: fragment(tr.payload, i)})
	}
	return out
}

// NoteSent records which sequence number a just-sent fragment (or the
// begin packet, index -1) went out under, so a later PacketLost(seq)
// can be mapped back to the right fragment to retransmit.
func (t *Transmitter) NoteSent(id uuid.UUID, index int, seq uint16) {
	tr, ok := t.out[id]
	if !ok {
		return
	}
	if index < 0 {
		tr.beginSeq = seq
		return
	}
	tr.fragSeq[index] = seq
}

// AckFragment marks a fragment (or -1 for the begin) delivered.
func (t *Transmitter) AckFragment(id uuid.UUID, index int) {
	tr, ok := t.out[id]
	if !ok {
		return
	}
	if index < 0 {
		tr.beginOK = true
		return
	}
	tr.acked[index] = true
}

// Done reports whether every fragment of an outbound transfer has been
// acked, and if so releases the strong chunk reference and removes the
// bookkeeping.
func (t *Transmitter) Done(id uuid.UUID) bool {
	tr, ok := t.out[id]
	if !ok {
		return true
	}
	if !tr.beginOK {
		return false
	}
	n := fragmentCount(len(tr.payload))
	for i := 0; i < n; i++ {
		if !tr.acked[i] {
			return false
		}
	}
	tr.chunk.Release()
	delete(t.out, id)
	return true
}

// Abort clears an in-flight outbound transfer's state and releases its
// chunk reference without waiting for acks, per spec §4.10.
func (t *Transmitter) Abort(id uuid.UUID) {
	tr, ok := t.out[id]
	if !ok {
		return
	}
	tr.chunk.Release()
	delete(t.out, id)
}

// FragmentForSeq finds the outbound fragment index last sent under
// seq, for retransmission when the reliability layer reports it lost.
// Returns index -2 if seq doesn't belong to any known transfer.
func (t *Transmitter) FragmentForSeq(seq uint16) (id uuid.UUID, index int, ok bool) {
	for tid, tr := range t.out {
		if tr.beginSeq == seq {
			return tid, -1, true
		}
		for i, s := range tr.fragSeq {
			if s == seq {
				return tid, i, true
			}
		}
	}
	return uuid.UUID{}, -2, false
}

// inTransfer accumulates inbound fragments for one transmission until
// every offset is covered, then decodes the result into the target
// chunk.
type inTransfer struct {
	flags     uint8
	total     int
	data      []byte
	have      map[int]bool
	target    *voxel.Chunk
	startedAt time.Time
}

// BeginReceive registers a new inbound transfer keyed by id, allocating
// a reassembly buffer of the announced size.
func (t *Transmitter) BeginReceive(id uuid.UUID, flags uint8, dataSize int, target *voxel.Chunk, now time.Time) {
	t.in[id] = &inTransfer{
		flags:     flags,
		total:     dataSize,
		data:      make([]byte, dataSize),
		have:      make(map[int]bool),
		target:    target,
		startedAt: now,
	}
}

// ReceiveFragment writes one fragment's bytes into the reassembly
// buffer at offset, returning true once every byte of the transfer has
// arrived (at which point the caller should call Complete).
func (t *Transmitter) ReceiveFragment(id uuid.UUID, offset int, data []byte) bool {
	tr, ok := t.in[id]
	if !ok {
		return false
	}
	copy(tr.data[offset:], data)
	idx := offset / payloadSize
	tr.have[idx] = true
	n := fragmentCount(tr.total)
	for i := 0; i < n; i++ {
		if !tr.have[i] {
			return false
		}
	}
	return true
}

// Complete decompresses (if flagged) the reassembled buffer and
// deserializes it into the transfer's target chunk, then discards the
// transfer's bookkeeping.
func (t *Transmitter) Complete(id uuid.UUID) error {
	tr, ok := t.in[id]
	if !ok {
		return nil
	}
	raw := tr.data
	if tr.flags&FlagCompressed != 0 {
		decompressed, err := decompressZlib(raw)
		if err != nil {
			return err
		}
		raw = decompressed
	}
	deserializeChunk(tr.target, raw)
	delete(t.in, id)
	return nil
}

func compressZlib(raw []byte) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes()
}

func decompressZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// serializeChunk packs every cell's encoded block into a flat
// little-endian uint32 array, the same 4096*4 byte layout
// internal/worldsave writes to disk (spec §4.3's chunk payload is
// exactly that array, pre-compression).
func serializeChunk(c *voxel.Chunk) []byte {
	buf := make([]byte, 0, voxel.ChunkSize*voxel.ChunkSize*voxel.ChunkSize*4)
	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				v := c.BlockAt(x, y, z).Encode()
				buf = append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
			}
		}
	}
	return buf
}

func deserializeChunk(c *voxel.Chunk, raw []byte) {
	i := 0
	for z := 0; z < voxel.ChunkSize; z++ {
		for y := 0; y < voxel.ChunkSize; y++ {
			for x := 0; x < voxel.ChunkSize; x++ {
				v := uint32(raw[i]) | uint32(raw[i+1])<<8 | uint32(raw[i+2])<<16 | uint32(raw[i+3])<<24
				i += 4
				c.SetBlock(x, y, z, block.Decode(v))
			}
		}
	}
}
