package server

import (
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/annel0/mmo-game/internal/entity"
	"github.com/annel0/mmo-game/internal/network"
	"github.com/annel0/mmo-game/internal/voxel"
)

// visibilityRadius is the Manhattan chunk radius spec §4.8 uses to
// decide spawn/despawn of other entities.
const visibilityRadius = 7

// indexExtent sizes each player's streaming ChunkIndex generously
// beyond the visibility radius so chunks are generated/loaded ahead
// of when an entity there would need to be spawned.
const indexExtent = visibilityRadius + 1

// entityBatchSize caps how many EntityUpdate entries one packet
// carries (spec §4.8: "flush queued updates in batches of <= N").
const entityBatchSize = 32

// warpThresholdSq is the squared-distance drift threshold beyond which
// a client's predicted position is corrected rather than left to
// converge — "disp_squared > 0.01" per spec §4.8/§9 Open Questions
// (0.01 m², i.e. 10 cm of actual drift).
const warpThresholdSq = 0.01

// Session is one connected client: its reliability-layer Connection,
// its player entity/streaming index, and the bookkeeping needed to
// diff what it already knows against the authoritative world each
// tick. Grounded on the teacher's GameHandler (playerEntities map,
// per-client dispatch) generalized from a string client id to a UDP
// address and a typed entity.ID.
type Session struct {
	Addr *net.UDPAddr
	Conn *network.Connection
	Name string

	Player *entity.Player

	known        map[entity.ID]bool // entities currently spawned on this client
	lastInputSeq uint16
	lastPredicted entity.State
	hasPredicted  bool

	trans             *network.Transmitter
	outstandingSend   *uuid.UUID // the one chunk transfer in flight, per spec §4.8
	sentChunks        map[voxel.ChunkPos]bool
	pendingRetransmit []retransmit

	lastSeen time.Time
}

func newSession(addr *net.UDPAddr) *Session {
	return &Session{
		Addr:       addr,
		known:      make(map[entity.ID]bool),
		trans:      network.NewTransmitter(),
		sentChunks: make(map[voxel.ChunkPos]bool),
		lastSeen:   time.Now(),
	}
}

// PacketLost implements network.Handler: a lost fragment or begin is
// retransmitted; other lost packet kinds are left to the caller's
// higher-level retry (login/spawn) since Session only owns chunk
// transfer state directly.
func (s *Session) PacketLost(seq uint16) {
	if s.outstandingSend == nil {
		return
	}
	id, idx, ok := s.trans.FragmentForSeq(seq)
	if !ok || id != *s.outstandingSend {
		return
	}
	s.pendingRetransmit = append(s.pendingRetransmit, retransmit{id: id, index: idx})
}

// PacketReceived implements network.Handler.
func (s *Session) PacketReceived(seq uint16) {
	if s.outstandingSend == nil {
		return
	}
	id, idx, ok := s.trans.FragmentForSeq(seq)
	if !ok || id != *s.outstandingSend {
		return
	}
	s.trans.AckFragment(id, idx)
}

type retransmit struct {
	id    uuid.UUID
	index int
}
