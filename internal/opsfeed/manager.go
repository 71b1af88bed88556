// Package opsfeed fans ticket lifecycle events out to connected dashboard
// subscribers over websockets. Events arrive from the Redis ticket channel,
// so feeds stay live even when the bot runs in another process.
package opsfeed

import (
	"log"

	"ticketgogo/backend/internal/models"
)

// Manager is the subscriber hub. All client registration and event fan-out
// happens on the Run loop; the maps are never touched from outside it.
type Manager struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client

	// EventsCh carries the ticket events to broadcast. The Redis listener
	// feeds it in production; tests feed it directly.
	EventsCh chan models.TicketEvent
}

func NewManager() *Manager {
	return &Manager{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventsCh:     make(chan models.TicketEvent),
	}
}

// Run processes registrations and broadcasts until the process exits.
func (m *Manager) Run() {
	for {
		select {
		case client := <-m.RegisterCh:
			m.Clients[client.GetID()] = client
			log.Printf("INFO: Feed subscriber %s connected (%d total)", client.GetID(), len(m.Clients))

		case client := <-m.UnregisterCh:
			if _, ok := m.Clients[client.GetID()]; ok {
				delete(m.Clients, client.GetID())
				client.Close()
				log.Printf("INFO: Feed subscriber %s disconnected (%d total)", client.GetID(), len(m.Clients))
			}

		case ev := <-m.EventsCh:
			for id, client := range m.Clients {
				select {
				case client.GetSendChannel() <- ev:
				default:
					// A subscriber that cannot keep up is dropped rather than
					// allowed to stall the broadcast.
					delete(m.Clients, id)
					client.Close()
					log.Printf("WARN: Feed subscriber %s too slow, dropped", id)
				}
			}
		}
	}
}
