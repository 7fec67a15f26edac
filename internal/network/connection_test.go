package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingHandler struct {
	lost, received []uint16
}

func (r *recordingHandler) PacketLost(seq uint16)     { r.lost = append(r.lost, seq) }
func (r *recordingHandler) PacketReceived(seq uint16) { r.received = append(r.received, seq) }

func TestAckedInSelfAndWindow(t *testing.T) {
	assert.True(t, ackedIn(10, 0, 10), "a sequence equal to ack is always acked")
	assert.True(t, ackedIn(10, 0b1, 9))
	assert.False(t, ackedIn(10, 0, 9))
	assert.False(t, ackedIn(10, 0xFFFFFFFF, 11), "a sequence after ack is never acked")
	assert.False(t, ackedIn(100, 0xFFFFFFFF, 50), "a sequence more than 32 before ack falls outside the window")
}

func TestConnectionNextOutgoingIncrementsSequence(t *testing.T) {
	c := NewConnection(&recordingHandler{})
	now := time.Now()
	first := c.NextOutgoing(now)
	second := c.NextOutgoing(now)
	assert.Equal(t, uint16(1), first.Seq)
	assert.Equal(t, uint16(2), second.Seq)
}

func TestConnectionFirstReceiveEmitsNoEvents(t *testing.T) {
	h := &recordingHandler{}
	c := NewConnection(h)
	c.Receive(Control{Seq: 1, Ack: 0, Hist: 0}, time.Now())
	assert.Empty(t, h.lost)
	assert.Empty(t, h.received)
}

func TestConnectionReceiveEmitsLostAndReceivedEvents(t *testing.T) {
	h := &recordingHandler{}
	c := NewConnection(h)

	c.Receive(Control{Seq: 1, Ack: 0, Hist: 0}, time.Now())
	c.Receive(Control{Seq: 2, Ack: 3, Hist: 0b010}, time.Now())

	assert.ElementsMatch(t, []uint16{0, 2}, h.lost)
	assert.ElementsMatch(t, []uint16{1, 3}, h.received)
}

func TestConnectionReceiveReportsEachLostSequenceOnlyOnce(t *testing.T) {
	h := &recordingHandler{}
	c := NewConnection(h)

	// Peer never acks seq 2 again; it keeps acking 3, 4, 5, ... one at
	// a time, which keeps seq 2 inside the 32-wide lookback window for
	// many receives in a row.
	c.Receive(Control{Seq: 1, Ack: 0, Hist: 0}, time.Now())
	c.Receive(Control{Seq: 2, Ack: 3, Hist: 0}, time.Now())
	c.Receive(Control{Seq: 3, Ack: 4, Hist: 0}, time.Now())
	c.Receive(Control{Seq: 4, Ack: 5, Hist: 0}, time.Now())
	c.Receive(Control{Seq: 5, Ack: 6, Hist: 0}, time.Now())

	lostCount := map[uint16]int{}
	for _, s := range h.lost {
		lostCount[s]++
	}
	assert.Equal(t, 1, lostCount[2], "seq 2 must be reported lost exactly once, not on every subsequent ack advance")
	for seq, n := range lostCount {
		assert.Equalf(t, 1, n, "sequence %d reported lost %d times, want at most once", seq, n)
	}
}

func TestConnectionTimedOutRequiresPriorReceive(t *testing.T) {
	c := NewConnection(&recordingHandler{})
	assert.False(t, c.TimedOut(time.Now().Add(time.Hour)), "never having seen a packet is not a timeout")

	c.Receive(Control{Seq: 1}, time.Now())
	assert.False(t, c.TimedOut(time.Now()))
	assert.True(t, c.TimedOut(time.Now().Add(time.Hour)))
}

func TestConnectionNeedsKeepaliveAfterInterval(t *testing.T) {
	c := NewConnection(&recordingHandler{})
	now := time.Now()
	assert.False(t, c.NeedsKeepalive(now), "never having sent or received anything needs no keepalive yet")

	c.Receive(Control{Seq: 1}, now)
	c.NextOutgoing(now)
	assert.False(t, c.NeedsKeepalive(now.Add(100*time.Millisecond)))
	assert.True(t, c.NeedsKeepalive(now.Add(time.Second)))
}
