// Package progress implements the Progress Bus: a per-investigation
// ordered event stream with bounded buffering, late-subscriber replay, and
// slow-consumer disconnection.
//
// Grounded on the teacher's internal/agent/event_sink.go (bounded
// channel-merge backpressure design) and event_emitter.go (atomic
// monotonic sequence numbering), adapted from a single process-wide
// agent-event stream to one ring+channel pair per investigation, with an
// explicit buffer_overflow marker event the teacher's sink does not emit.
package progress

import (
	"sync"
	"sync/atomic"

	"github.com/ovokpus/investigatorai/internal/domain"
)

const (
	// DefaultRingSize is the default per-investigation replay buffer
	// size (spec.md: "bounded buffer, default 256 events/investigation").
	DefaultRingSize = 256
	// DefaultSubscriberQueueSize is the default per-subscriber channel
	// depth before that subscriber is disconnected (spec.md: "bounded
	// queue, default 64").
	DefaultSubscriberQueueSize = 64
)

// Bus fans out ProgressEvents for many concurrently running
// investigations. One stream is created per investigation via
// Publish/Subscribe; callers don't need to pre-register investigations.
type Bus struct {
	mu      sync.Mutex
	streams map[string]*stream

	ringSize  int
	queueSize int
}

// BusOptions configures a Bus.
type BusOptions struct {
	RingSize  int
	QueueSize int
}

// NewBus constructs a Bus.
func NewBus(opts BusOptions) *Bus {
	ringSize := opts.RingSize
	if ringSize <= 0 {
		ringSize = DefaultRingSize
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultSubscriberQueueSize
	}
	return &Bus{
		streams:   make(map[string]*stream),
		ringSize:  ringSize,
		queueSize: queueSize,
	}
}

// stream is the single-producer, multi-subscriber state for one
// investigation. A single producer goroutine is expected to call Publish;
// the mutex here only protects the ring/subscriber bookkeeping against
// concurrent Subscribe calls, not against concurrent publishers.
type stream struct {
	mu          sync.Mutex
	seq         uint64 // atomic
	ring        []domain.ProgressEvent
	ringStart   uint64 // sequence number of ring[0]
	subscribers map[int]*subscriber
	nextSubID   int
	overflowed  bool
	terminal    bool
	ringSize    int
	queueSize   int
}

type subscriber struct {
	ch     chan domain.ProgressEvent
	closed bool
}

func (b *Bus) getOrCreate(investigationID string) *stream {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.streams[investigationID]
	if !ok {
		s = &stream{
			ring:        make([]domain.ProgressEvent, 0, b.ringSize),
			subscribers: make(map[int]*subscriber),
			ringSize:    b.ringSize,
			queueSize:   b.queueSize,
		}
		b.streams[investigationID] = s
	}
	return s
}

// Publish assigns the next sequence number to event and fans it out to
// every live subscriber of its investigation, appending it to the replay
// ring. Exactly one terminal event (Final or Error) is expected per
// investigation; Publish does not itself enforce this (the Orchestrator
// does, as the sole producer), but it treats the first terminal event it
// sees as the point after which the stream is closed to new subscribers
// once fully drained.
func (b *Bus) Publish(investigationID string, event domain.ProgressEvent) {
	s := b.getOrCreate(investigationID)

	s.mu.Lock()
	event.InvestigationID = investigationID
	event.Sequence = atomic.AddUint64(&s.seq, 1)
	s.appendRing(event)
	if event.IsTerminal() {
		s.terminal = true
	}
	subs := make([]*subscriber, 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		b.deliver(s, sub, event)
	}
}

// appendRing stores event, dropping the oldest non-terminal ring entry and
// inserting a single buffer_overflow marker the first time the ring fills,
// per spec.md's overflow behavior. Must be called with s.mu held.
func (s *stream) appendRing(event domain.ProgressEvent) {
	if len(s.ring) < s.ringSize {
		s.ring = append(s.ring, event)
		return
	}
	if !s.overflowed {
		s.overflowed = true
		s.ring = append(s.ring[1:], domain.ProgressEvent{
			InvestigationID: event.InvestigationID,
			Sequence:        event.Sequence,
			Kind:            domain.EventBufferOverflow,
			Message:         "progress ring buffer overflowed; earlier events were dropped",
		}, event)
		// Keep ring bounded: drop oldest again if the overflow marker
		// pushed us one over.
		if len(s.ring) > s.ringSize {
			s.ring = s.ring[len(s.ring)-s.ringSize:]
		}
		return
	}
	s.ring = append(s.ring[1:], event)
}

// deliver sends event to sub, disconnecting it (closing its channel) if
// its queue is full — unless event is terminal, in which case delivery
// blocks briefly rather than ever silently dropping the final event.
func (b *Bus) deliver(s *stream, sub *subscriber, event domain.ProgressEvent) {
	s.mu.Lock()
	if sub.closed {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if event.IsTerminal() {
		sub.ch <- event
		return
	}

	select {
	case sub.ch <- event:
	default:
		b.disconnect(s, sub)
	}
}

func (b *Bus) disconnect(s *stream, sub *subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
	for id, candidate := range s.subscribers {
		if candidate == sub {
			delete(s.subscribers, id)
			break
		}
	}
}

// Subscribe returns a channel of events for investigationID starting from
// the beginning of the retained ring (a late subscriber replays whatever
// is still buffered, per spec.md's replay requirement), plus an unsubscribe
// function the caller must call when done.
func (b *Bus) Subscribe(investigationID string) (<-chan domain.ProgressEvent, func()) {
	s := b.getOrCreate(investigationID)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	sub := &subscriber{ch: make(chan domain.ProgressEvent, s.queueSize)}
	s.subscribers[id] = sub
	backlog := make([]domain.ProgressEvent, len(s.ring))
	copy(backlog, s.ring)
	s.mu.Unlock()

	go func() {
		for _, e := range backlog {
			select {
			case sub.ch <- e:
			default:
				b.disconnect(s, sub)
				return
			}
		}
	}()

	unsubscribe := func() { b.disconnect(s, sub) }
	return sub.ch, unsubscribe
}

// Close removes all retained state for investigationID. Call once the
// investigation's terminal event has been observed by every interested
// party and no further replay is needed.
func (b *Bus) Close(investigationID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s, ok := b.streams[investigationID]; ok {
		s.mu.Lock()
		for _, sub := range s.subscribers {
			if !sub.closed {
				sub.closed = true
				close(sub.ch)
			}
		}
		s.mu.Unlock()
		delete(b.streams, investigationID)
	}
}
