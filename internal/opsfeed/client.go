package opsfeed

import "ticketgogo/backend/internal/models"

// Client is the interface for one feed subscriber connection. It abstracts the
// underlying transport so the hub can manage subscriber types uniformly.
type Client interface {
	// GetID returns the unique identifier of the connection.
	GetID() string

	// GetSendChannel returns the channel through which the hub delivers ticket
	// events to this subscriber. It is a send-only channel.
	GetSendChannel() chan<- models.TicketEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close gracefully shuts down the client's connection and channels.
	Close()
}
