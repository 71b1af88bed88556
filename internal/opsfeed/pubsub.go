package opsfeed

import (
	"encoding/json"
	"log"

	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/storage"
)

// StartPubSubListener subscribes to the Redis ticket-event channel and feeds
// every decoded event into the hub's broadcast channel.
func (m *Manager) StartPubSubListener(s *storage.Service) {
	go func() {
		pubsub := s.SubscribeTicketEvents()
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var ev models.TicketEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("ERROR: Failed to decode ticket event from Redis: %v", err)
				continue
			}
			m.EventsCh <- ev
		}
	}()
}
