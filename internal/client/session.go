// Package client implements the client-side session: local prediction
// against the same physics code the server runs, reconciliation on
// PlayerCorrection, and a thin mirror of world state (entities and
// streamed chunks) fed by the server's broadcasts. Grounded on the
// teacher's internal/network/game_handler.go for the dispatch-by-
// message-type shape, generalized from its 2D tile mirror to the 3D
// engine's prediction/reconciliation loop (the teacher has no client-
// side prediction at all — every source repo in the pack is either
// server-only or renders strictly from authoritative state).
package client

import (
	"net"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/entity"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/network"
	"github.com/annel0/mmo-game/internal/physics"
	"github.com/annel0/mmo-game/internal/voxel"
)

const historySize = 16

// playerPhysics mirrors the server's response/force-cap constants
// (internal/server.playerPhysics) — prediction only tracks the
// authoritative simulation if both sides integrate identically.
var playerPhysics = physics.Params{ResponseTime: 0.15, ForceCap: 40}

const maxMoveSpeed = 4.3 // m/s, must match internal/server's maxSpeed

// warpDistance is the reconciliation threshold past which a
// correction snaps the predicted state instead of easing into it
// (spec §4.9 step 4).
const warpDistance = 0.1

// maxInterpPerTick bounds how far a sub-threshold correction eases the
// predicted position per tick (spec §4.9 step 4: "≤ 1 cm per frame").
const maxInterpPerTick = 0.01

// historyEntry is one tick's predicted-state snapshot, kept so a later
// PlayerCorrection can replay from the corrected baseline (spec §4.9
// step 3).
type historyEntry struct {
	seq       uint16
	state     entity.State
	targetVel mgl64.Vec3
	dt        float64
}

// remoteEntity mirrors one other entity's last-known transform, as
// reported by SpawnEntity/EntityUpdate.
type remoteEntity struct {
	modelID uint16
	bounds  [2]mgl64.Vec3
	name    string
	state   entity.State
}

// Session is the client side of one connection to a server: local
// prediction, reconciliation, and a mirror of entities/chunks for
// rendering.
type Session struct {
	conn    *net.UDPConn
	server  *net.UDPAddr
	rel     *network.Connection
	trans   *network.Transmitter
	metrics *network.Metrics

	registry *block.Registry
	store    *voxel.Store

	name      string
	playerID  entity.ID
	worldName string
	joined    bool

	player     entity.State
	history    [historySize]historyEntry
	historyLen int

	correctionTarget *mgl64.Vec3 // set while easing toward a sub-threshold correction

	entities map[entity.ID]*remoteEntity

	inTransfers map[uuid.UUID]voxel.ChunkPos

	input Input
}

func NewSession(conn *net.UDPConn, server *net.UDPAddr, registry *block.Registry, input Input, metrics *network.Metrics) *Session {
	s := &Session{
		conn:        conn,
		server:      server,
		trans:       network.NewTransmitter(),
		metrics:     metrics,
		registry:    registry,
		store:       voxel.NewStore(registry),
		entities:    make(map[entity.ID]*remoteEntity),
		inTransfers: make(map[uuid.UUID]voxel.ChunkPos),
		input:       input,
	}
	s.rel = network.NewConnection(network.NewMetricsHandler(noopHandler{}, metrics))
	return s
}

// noopHandler discards PacketLost/PacketReceived: the client never
// retransmits a stale PlayerUpdate (the next tick supersedes it) and
// never sends chunk fragments, so neither event needs handling here.
type noopHandler struct{}

func (noopHandler) PacketLost(uint16)     {}
func (noopHandler) PacketReceived(uint16) {}

// Login sends the initial Login packet; the session becomes usable
// once Join arrives (see HandlePacket).
func (s *Session) Login(name string) error {
	s.name = name
	return s.send(network.TypeLogin, network.EncodeLogin(name))
}

// Joined reports whether the server has accepted this session.
func (s *Session) Joined() bool { return s.joined }

// Store exposes the locally mirrored chunk store for rendering.
func (s *Session) Store() *voxel.Store { return s.store }

func (s *Session) send(typ network.Type, payload []byte) error {
	ctrl := s.rel.NextOutgoing(time.Now())
	buf := network.WriteHeader(make([]byte, 0, network.MaxPacketSize), ctrl, typ)
	buf = append(buf, payload...)
	_, err := s.conn.WriteToUDP(buf, s.server)
	if err == nil {
		s.metrics.PacketsSent.Inc()
	}
	return err
}

// sendWithSeq is like send but returns the sequence number the packet
// went out under, for PlayerUpdate's history bookkeeping.
func (s *Session) sendWithSeq(typ network.Type, payload []byte) (uint16, error) {
	ctrl := s.rel.NextOutgoing(time.Now())
	buf := network.WriteHeader(make([]byte, 0, network.MaxPacketSize), ctrl, typ)
	buf = append(buf, payload...)
	_, err := s.conn.WriteToUDP(buf, s.server)
	if err == nil {
		s.metrics.PacketsSent.Inc()
	}
	return ctrl.Seq, err
}

// HandlePacket dispatches one datagram received from the server.
func (s *Session) HandlePacket(data []byte) {
	hdr, payload, err := network.ReadHeader(data)
	if err != nil {
		logging.LogProtocolError(s.server.String(), err, data)
		return
	}
	s.rel.Receive(hdr.Control, time.Now())

	switch hdr.Type {
	case network.TypeJoin:
		s.handleJoin(payload)
	case network.TypePart:
		s.joined = false
		logging.LogInfo("disconnected by server")
	case network.TypeSpawnEntity:
		s.handleSpawn(payload)
	case network.TypeDespawnEntity:
		id := network.DecodeDespawnEntity(payload)
		delete(s.entities, id)
	case network.TypeEntityUpdate:
		s.handleEntityUpdate(payload)
	case network.TypePlayerCorrection:
		s.handleCorrection(payload)
	case network.TypeChunkBegin:
		s.handleChunkBegin(payload)
	case network.TypeChunkData:
		s.handleChunkData(payload)
	case network.TypeBlockUpdate:
		s.handleBlockUpdate(payload)
	case network.TypeMessage:
		typ, referral, text := network.DecodeMessage(payload)
		logging.LogDebug("message type=%d referral=%d text=%q", typ, referral, text)
	}
}

func (s *Session) handleJoin(payload []byte) {
	id, state, world := network.DecodeJoin(payload)
	s.playerID = id
	s.player = state
	s.worldName = world
	s.joined = true
	logging.LogInfo("joined world %q as id %d", world, id)
}

func (s *Session) handleSpawn(payload []byte) {
	p := network.DecodeSpawnEntity(payload)
	if p.ID == s.playerID {
		return
	}
	s.entities[p.ID] = &remoteEntity{modelID: p.ModelID, bounds: p.Bounds, name: p.Name, state: p.State}
}

func (s *Session) handleEntityUpdate(payload []byte) {
	_, entries := network.DecodeEntityUpdate(payload)
	for _, e := range entries {
		if e.ID == s.playerID {
			continue
		}
		if re, ok := s.entities[e.ID]; ok {
			re.state = e.State
		}
	}
}

func (s *Session) handleChunkBegin(payload []byte) {
	id, flags, coords, dataSize := network.DecodeChunkBegin(payload)
	target := s.store.Allocate(coords)
	s.trans.BeginReceive(id, flags, dataSize, target, time.Now())
	s.inTransfers[id] = coords
}

func (s *Session) handleChunkData(payload []byte) {
	id, offset, data := network.DecodeChunkData(payload)
	if !s.trans.ReceiveFragment(id, offset, data) {
		return
	}
	if err := s.trans.Complete(id); err != nil {
		logging.LogError("chunk transfer %s: %v", id, err)
	}
	pos := s.inTransfers[id]
	delete(s.inTransfers, id)
	logging.LogChunkSent(s.server.String(), pos.X, pos.Y, pos.Z, len(data))
}

func (s *Session) handleBlockUpdate(payload []byte) {
	coords, entries := network.DecodeBlockUpdate(payload)
	c, ok := s.store.Get(coords)
	if !ok {
		return
	}
	for _, e := range entries {
		x, y, z := cellCoords(e.Index)
		c.SetBlock(x, y, z, e.Block)
	}
}

func cellCoords(index int) (x, y, z int) {
	x = index % voxel.ChunkSize
	y = (index / voxel.ChunkSize) % voxel.ChunkSize
	z = index / (voxel.ChunkSize * voxel.ChunkSize)
	return x, y, z
}

// Tick advances local prediction by one fixed step and sends the
// resulting PlayerUpdate (spec §4.9).
func (s *Session) Tick(dt float64) error {
	if !s.joined {
		return nil
	}

	s.applyPendingInterpolation()

	move := s.input.Movement()
	pitch, yaw := s.input.Look()
	targetVel := move.Mul(maxMoveSpeed)

	s.player = s.step(s.player, targetVel, dt)
	s.player.Pitch, s.player.Yaw = pitch, yaw

	payload := network.PlayerUpdatePayload{
		State:    s.player,
		Movement: move,
		Actions:  s.input.Actions(),
		Slot:     s.input.Slot(),
	}
	seq, err := s.sendWithSeq(network.TypePlayerUpdate, network.EncodePlayerUpdate(payload))
	if err != nil {
		return err
	}
	s.pushHistory(historyEntry{seq: seq, state: s.player, targetVel: targetVel, dt: dt})
	return nil
}

// step integrates one physics sub-step the same way the server does:
// acceleration toward targetVel plus ambient gravity, then collision
// resolution against the locally mirrored chunks.
func (s *Session) step(in entity.State, targetVel mgl64.Vec3, dt float64) entity.State {
	pos := toVec3(in.Location)
	accel := func(p, v mgl64.Vec3) mgl64.Vec3 {
		gravity := physics.SampleGravity(s.store, s.gravityLookup, in.Location.Chunk, p)
		return physics.CalculateForce(v, targetVel, playerPhysics, gravity)
	}
	newPos, newVel := physics.Integrate(pos, in.Velocity, dt, accel)

	const halfWidth, height = 0.3, 1.8
	min := newPos.Add(mgl64.Vec3{-halfWidth, 0, -halfWidth})
	max := newPos.Add(mgl64.Vec3{halfWidth, height, halfWidth})
	disp := physics.ResolveAABB(s.store, in.Location.Chunk, min, max)
	newPos = newPos.Add(disp)

	out := in
	out.Location = voxel.FromAbsolute(newPos[0], newPos[1], newPos[2])
	out.Velocity = newVel
	return out
}

func (s *Session) gravityLookup(id uint16) (radius, strength float64, ok bool) {
	t, found := s.registry.Get(block.BlockID(id))
	if !found || t.Gravity == nil {
		return 0, 0, false
	}
	return t.Gravity.Radius, t.Gravity.Strength, true
}

func toVec3(l voxel.ExactLocation) mgl64.Vec3 {
	a := l.Absolute()
	return mgl64.Vec3{a[0], a[1], a[2]}
}

func (s *Session) pushHistory(e historyEntry) {
	if s.historyLen < historySize {
		s.history[s.historyLen] = e
		s.historyLen++
		return
	}
	copy(s.history[:historySize-1], s.history[1:])
	s.history[historySize-1] = e
}

// handleCorrection implements spec §4.9 step 4: drop history entries
// at or before the corrected sequence, replay the rest from the
// corrected baseline, then either warp or ease the live predicted
// state toward the replayed result depending on how far it moved.
func (s *Session) handleCorrection(payload []byte) {
	seq, corrected := network.DecodePlayerCorrection(payload)

	kept := s.history[:0]
	for _, e := range s.history[:s.historyLen] {
		if seqAfter(e.seq, seq) {
			kept = append(kept, e)
		}
	}
	s.historyLen = len(kept)

	replayed := corrected
	for i := range s.history[:s.historyLen] {
		replayed = s.step(replayed, s.history[i].targetVel, s.history[i].dt)
		s.history[i].state = replayed
	}

	delta := toVec3(replayed.Location).Sub(toVec3(s.player.Location))
	if delta.Len() > warpDistance {
		s.player = replayed
		s.correctionTarget = nil
		return
	}
	target := toVec3(replayed.Location)
	s.correctionTarget = &target
}

// seqAfter reports whether a is sequenced strictly after b, accounting
// for 16-bit wraparound the same way the reliability layer does.
func seqAfter(a, b uint16) bool {
	return int16(a-b) > 0
}

// applyPendingInterpolation eases the live predicted position toward
// correctionTarget by at most maxInterpPerTick, clearing the target
// once reached.
func (s *Session) applyPendingInterpolation() {
	if s.correctionTarget == nil {
		return
	}
	cur := toVec3(s.player.Location)
	toTarget := s.correctionTarget.Sub(cur)
	d := toTarget.Len()
	if d <= maxInterpPerTick {
		s.player.Location = voxel.FromAbsolute(s.correctionTarget[0], s.correctionTarget[1], s.correctionTarget[2])
		s.correctionTarget = nil
		return
	}
	step := toTarget.Mul(maxInterpPerTick / d)
	next := cur.Add(step)
	s.player.Location = voxel.FromAbsolute(next[0], next[1], next[2])
}

// Part tells the server this session is disconnecting.
func (s *Session) Part() error {
	return s.send(network.TypePart, network.EncodePart())
}
