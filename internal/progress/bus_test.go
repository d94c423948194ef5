package progress

import (
	"testing"
	"time"

	"github.com/ovokpus/investigatorai/internal/domain"
)

func TestBusDeliversInOrderAndReplays(t *testing.T) {
	bus := NewBus(BusOptions{})

	bus.Publish("inv-1", domain.ProgressEvent{Kind: domain.EventInvestigationStarted})
	bus.Publish("inv-1", domain.ProgressEvent{Kind: domain.EventAgentStarted})

	ch, unsubscribe := bus.Subscribe("inv-1")
	defer unsubscribe()

	var seqs []uint64
	for i := 0; i < 2; i++ {
		select {
		case e := <-ch:
			seqs = append(seqs, e.Sequence)
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for replayed event %d", i)
		}
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("expected replay sequences [1 2], got %v", seqs)
	}

	bus.Publish("inv-1", domain.ProgressEvent{Kind: domain.EventFinal})
	select {
	case e := <-ch:
		if e.Sequence != 3 || !e.IsTerminal() {
			t.Fatalf("expected terminal event with sequence 3, got %+v", e)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for terminal event")
	}
}

func TestBusOverflowInsertsMarkerOnce(t *testing.T) {
	bus := NewBus(BusOptions{RingSize: 2, QueueSize: 8})

	bus.Publish("inv-2", domain.ProgressEvent{Kind: domain.EventProgress})
	bus.Publish("inv-2", domain.ProgressEvent{Kind: domain.EventProgress})
	bus.Publish("inv-2", domain.ProgressEvent{Kind: domain.EventProgress})

	ch, unsubscribe := bus.Subscribe("inv-2")
	defer unsubscribe()

	sawOverflow := false
	for i := 0; i < 2; i++ {
		select {
		case e := <-ch:
			if e.Kind == domain.EventBufferOverflow {
				sawOverflow = true
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out on event %d", i)
		}
	}
	if !sawOverflow {
		t.Fatal("expected a buffer_overflow marker after ring capacity was exceeded")
	}
}

func TestBusDisconnectsSlowNonTerminalSubscriber(t *testing.T) {
	bus := NewBus(BusOptions{RingSize: 8, QueueSize: 1})
	ch, unsubscribe := bus.Subscribe("inv-3")
	defer unsubscribe()

	for i := 0; i < 5; i++ {
		bus.Publish("inv-3", domain.ProgressEvent{Kind: domain.EventProgress})
	}

	// Drain whatever made it through before disconnection; the channel
	// must eventually close rather than block Publish forever.
	closedSeen := false
	for i := 0; i < 10; i++ {
		select {
		case _, ok := <-ch:
			if !ok {
				closedSeen = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for channel to close")
		}
		if closedSeen {
			break
		}
	}
	if !closedSeen {
		t.Fatal("expected slow subscriber's channel to be closed")
	}
}
