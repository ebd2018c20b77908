package sse

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"skm_agent_backend/platform/logger"
)

func newTestService() *Service {
	return New(logger.New("test"))
}

func TestBroadcastReachesAllClients(t *testing.T) {
	svc := newTestService()

	a := &client{id: uuid.New(), events: make(chan Event, 4)}
	b := &client{id: uuid.New(), events: make(chan Event, 4)}
	svc.addClient(a)
	svc.addClient(b)

	svc.Broadcast(Event{Type: EventNewMessage, Data: "hello"})

	for _, cl := range []*client{a, b} {
		select {
		case ev := <-cl.events:
			if ev.Type != EventNewMessage {
				t.Fatalf("event type = %s, want %s", ev.Type, EventNewMessage)
			}
		default:
			t.Fatal("client did not receive broadcast event")
		}
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	svc := newTestService()

	cl := &client{id: uuid.New(), events: make(chan Event, 1)}
	svc.addClient(cl)

	svc.Broadcast(Event{Type: EventNewMessage})
	svc.Broadcast(Event{Type: EventModeChanged})

	if got := len(cl.events); got != 1 {
		t.Fatalf("buffered events = %d, want 1", got)
	}
}

func TestRemoveClientStopsDelivery(t *testing.T) {
	svc := newTestService()

	cl := &client{id: uuid.New(), events: make(chan Event, 1)}
	svc.addClient(cl)
	if svc.ClientCount() != 1 {
		t.Fatalf("client count = %d, want 1", svc.ClientCount())
	}

	svc.removeClient(cl)
	svc.removeClient(cl) // second remove is a no-op

	if svc.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", svc.ClientCount())
	}
	svc.Broadcast(Event{Type: EventNewMessage})
	if got := len(cl.events); got != 0 {
		t.Fatalf("removed client received %d events, want 0", got)
	}
}

// Broadcast snapshots the client list before sending, so a client removed
// mid-broadcast must still have a live channel to send into. Hammering
// broadcasts against connect/disconnect churn panics if removal closes
// the channel.
func TestBroadcastDuringClientChurn(t *testing.T) {
	svc := newTestService()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					svc.Broadcast(Event{Type: EventNewMessage})
				}
			}
		}()
	}

	for i := 0; i < 5000; i++ {
		cl := &client{id: uuid.New(), events: make(chan Event, 1)}
		svc.addClient(cl)
		svc.removeClient(cl)
	}
	close(stop)
	wg.Wait()

	if svc.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", svc.ClientCount())
	}
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	svc := newTestService()

	a := &client{id: uuid.New(), events: make(chan Event, 1)}
	b := &client{id: uuid.New(), events: make(chan Event, 1)}
	svc.addClient(a)
	svc.addClient(b)

	svc.Close()
	svc.Close() // second close is a no-op

	if svc.ClientCount() != 0 {
		t.Fatalf("client count = %d, want 0", svc.ClientCount())
	}
	select {
	case <-svc.done:
	default:
		t.Fatal("done channel not closed after Close")
	}
}
