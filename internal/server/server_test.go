package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/block/blocktypes"
	"github.com/annel0/mmo-game/internal/cmdparser"
	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/network"
	"github.com/annel0/mmo-game/internal/voxel"
)

type noopGenerator struct{}

func (noopGenerator) Generate(c *voxel.Chunk) {}

// testMetrics is shared by every test server: NewMetrics registers its
// collectors on the default registry, which panics on a second call.
var testMetrics = network.NewMetrics()

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	cfg.SavePath = t.TempDir()

	registry := block.NewRegistry()
	ids := blocktypes.Install(registry)

	s, err := New(cfg, registry, ids, noopGenerator{}, testMetrics)
	require.NoError(t, err)
	t.Cleanup(func() { s.conn.Close(); s.players.Close() })
	return s
}

func TestNewServerBindsSocketAndLoadsWorldConfig(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.conn)
	assert.Equal(t, s.cfg.Seed, s.seed, "a freshly initialized world persists the configured seed")
}

func TestCmdSeedReportsServerSeed(t *testing.T) {
	s := newTestServer(t)
	s.seed = 777

	resp := s.cmdSeed("alice", cmdparser.Command{Name: "seed"})

	require.Len(t, resp, 1)
	assert.Equal(t, cmdparser.ToSender, resp[0].Kind)
	assert.Equal(t, "seed: 777", resp[0].Text)
}

func TestCmdTeleportRequiresActiveSession(t *testing.T) {
	s := newTestServer(t)

	resp := s.cmdTeleport("nobody", cmdparser.Command{Name: "tp", Args: []string{"1", "2", "3"}})

	require.Len(t, resp, 1)
	assert.Equal(t, cmdparser.ToError, resp[0].Kind)
}

func TestCmdTeleportRejectsWrongArgCount(t *testing.T) {
	s := newTestServer(t)
	sess := newSession(nil)
	sess.Name = "alice"
	sess.Player = s.world.AddPlayer("alice", indexExtent)
	s.sessions["key"] = sess

	resp := s.cmdTeleport("alice", cmdparser.Command{Name: "tp", Args: []string{"1", "2"}})

	require.Len(t, resp, 1)
	assert.Equal(t, cmdparser.ToError, resp[0].Kind)
}

func TestCmdTeleportRejectsNonNumericCoordinate(t *testing.T) {
	s := newTestServer(t)
	sess := newSession(nil)
	sess.Name = "alice"
	sess.Player = s.world.AddPlayer("alice", indexExtent)
	s.sessions["key"] = sess

	resp := s.cmdTeleport("alice", cmdparser.Command{Name: "tp", Args: []string{"x", "2", "3"}})

	require.Len(t, resp, 1)
	assert.Equal(t, cmdparser.ToError, resp[0].Kind)
}

func TestCmdTeleportMovesPlayerOnSuccess(t *testing.T) {
	s := newTestServer(t)
	sess := newSession(nil)
	sess.Name = "alice"
	sess.Player = s.world.AddPlayer("alice", indexExtent)
	s.sessions["key"] = sess

	resp := s.cmdTeleport("alice", cmdparser.Command{Name: "tp", Args: []string{"10", "64", "-5"}})

	require.Len(t, resp, 1)
	assert.Equal(t, cmdparser.ToSender, resp[0].Kind)
	abs := sess.Player.State.Location.Absolute()
	assert.InDelta(t, 10, abs[0], 1e-6)
	assert.InDelta(t, 64, abs[1], 1e-6)
	assert.InDelta(t, -5, abs[2], 1e-6)
}

func TestSessionByNameFindsExactMatch(t *testing.T) {
	s := newTestServer(t)
	sess := newSession(nil)
	sess.Name = "bob"
	s.sessions["key"] = sess

	assert.Same(t, sess, s.sessionByName("bob"))
	assert.Nil(t, s.sessionByName("nope"))
}

func TestTickBlocksRunsRegisteredBehaviorOnLoadedChunks(t *testing.T) {
	s := newTestServer(t)
	c := s.store.Allocate(voxel.ChunkPos{X: 1})
	c.SetBlock(0, 0, 0, block.Block{Type: s.ids.Water})

	assert.NotPanics(t, s.tickBlocks)

	spread := false
	for _, off := range [][3]int{{1, 0, 0}, {0, 0, 1}} {
		if c.BlockAt(off[0], off[1], off[2]).Type == s.ids.Water {
			spread = true
		}
	}
	assert.True(t, spread, "water tick behavior should have spread into an adjacent air cell")
}

func TestTickBlocksNoopWithNoLoadedChunks(t *testing.T) {
	s := newTestServer(t)
	assert.NotPanics(t, s.tickBlocks)
}

func TestGravityLookupReportsNonEmittingBlockAsAbsent(t *testing.T) {
	s := newTestServer(t)
	_, _, ok := s.gravityLookup(uint16(s.ids.Stone))
	assert.False(t, ok)
}
