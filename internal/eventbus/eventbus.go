// Package eventbus is an optional pub/sub fan-out of world lifecycle
// events (chunk loaded, world saved, player joined) so the out-of-scope
// TCP console and other external tooling can observe the simulation
// without coupling into the tick loop. Grounded on the teacher's
// internal/eventbus package: the same Envelope/Filter/Handler/Stats
// shape and in-memory/JetStream dual implementation, generalized from
// a generic service-bus (BlockEvent/ChatEvent/arbitrary payload) to the
// fixed small set of world events this engine actually emits. A
// process that never configures a bus URL gets the in-memory
// implementation, which is a complete no-op fan-out (no subscribers,
// Publish just increments a counter) rather than a special nil case.
package eventbus

import (
	"context"
	"sync"
	"time"
)

// EventType names the fixed set of world lifecycle events this engine
// emits — unlike the teacher's open string-typed EventType, these are
// exhaustive: the engine is a closed two-process client/server pair,
// not a bus among many independent services.
type EventType string

const (
	EventChunkLoaded  EventType = "chunk.loaded"
	EventWorldSaved   EventType = "world.saved"
	EventPlayerJoined EventType = "player.joined"
	EventPlayerParted EventType = "player.parted"
)

// Envelope is one published event. Payload carries type-specific
// fields as a string map rather than the teacher's raw byte blob,
// since every event here originates and terminates inside this
// module — there's no cross-service wire format to version.
type Envelope struct {
	Timestamp time.Time
	EventType EventType
	Payload   map[string]string
}

// Filter restricts a subscription to a subset of event types; empty
// matches everything.
type Filter struct {
	Types []EventType
}

// Subscription is returned by Subscribe; Unsubscribe stops delivery.
type Subscription interface {
	Unsubscribe()
}

// Handler consumes one event. Called from a per-event goroutine, so
// handlers that touch shared state must synchronize themselves.
type Handler func(ctx context.Context, ev *Envelope)

// Stats reports cumulative bus activity.
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// Bus is the pub/sub abstraction: an in-memory implementation for
// single-process/no-config runs, a JetStream implementation when a
// NATS URL is configured.
type Bus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
}

type memoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus builds an in-process Bus with the given buffer
// capacity; low-priority semantics don't apply here (every event in
// this engine is informational), so a full buffer simply drops.
func NewMemoryBus(capacity int) Bus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	select {
	case mb.buffer <- ev:
		mb.mu.Lock()
		mb.stats.Published++
		mb.mu.Unlock()
	default:
		mb.mu.Lock()
		mb.stats.Dropped++
		mb.mu.Unlock()
	}
	return nil
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.mu.Unlock()
	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

func (mb *memoryBus) dispatchLoop() {
	for ev := range mb.buffer {
		mb.mu.RLock()
		subs := make([]subscriber, 0, len(mb.subscribers))
		for _, sub := range mb.subscribers {
			subs = append(subs, sub)
		}
		mb.mu.RUnlock()

		for _, sub := range subs {
			if !matchFilter(ev, sub.filter) {
				continue
			}
			go func(s subscriber) {
				select {
				case <-s.ctx.Done():
					return
				default:
					s.handler(s.ctx, ev)
					mb.mu.Lock()
					mb.stats.Consumed++
					mb.mu.Unlock()
				}
			}(sub)
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if t == ev.EventType {
			return true
		}
	}
	return false
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
