package opsfeed_test

import (
	"testing"
	"time"

	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/opsfeed"

	"github.com/stretchr/testify/assert"
)

type mockClient struct {
	id     string
	send   chan models.TicketEvent
	closed bool
}

func newMockClient(id string, buffer int) *mockClient {
	return &mockClient{id: id, send: make(chan models.TicketEvent, buffer)}
}

func (c *mockClient) GetID() string                             { return c.id }
func (c *mockClient) GetSendChannel() chan<- models.TicketEvent { return c.send }
func (c *mockClient) Run()                                      {}
func (c *mockClient) Close()                                    { c.closed = true }

func TestManager_RegisterUnregister(t *testing.T) {
	hub := opsfeed.NewManager()
	clientA := newMockClient("dash-a", 1)

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "dash-a")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "dash-a")
	assert.True(t, clientA.closed)
}

func TestManager_BroadcastsToAllSubscribers(t *testing.T) {
	hub := opsfeed.NewManager()
	clientA := newMockClient("dash-a", 1)
	clientB := newMockClient("dash-b", 1)

	go hub.Run()

	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	time.Sleep(100 * time.Millisecond)

	hub.EventsCh <- models.TicketEvent{Type: models.EventTicketCreated, TicketID: "T-20260828-0001"}
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientA.send:
		assert.Equal(t, "T-20260828-0001", ev.TicketID)
	default:
		t.Error("clientA did not receive event")
	}
	select {
	case ev := <-clientB.send:
		assert.Equal(t, models.EventTicketCreated, ev.Type)
	default:
		t.Error("clientB did not receive event")
	}
}

func TestManager_DropsSlowSubscriber(t *testing.T) {
	hub := opsfeed.NewManager()
	slow := newMockClient("dash-slow", 0) // unbuffered, never drained

	go hub.Run()

	hub.RegisterCh <- slow
	time.Sleep(100 * time.Millisecond)

	hub.EventsCh <- models.TicketEvent{Type: models.EventTicketClosed, TicketID: "T-20260828-0002"}
	time.Sleep(100 * time.Millisecond)

	assert.NotContains(t, hub.Clients, "dash-slow")
	assert.True(t, slow.closed)
}
