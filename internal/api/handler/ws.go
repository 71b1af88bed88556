package handler

import (
	"net/http"

	"ticketgogo/backend/internal/models"
	"ticketgogo/backend/internal/opsfeed"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeFeed upgrades the connection and subscribes it to the ticket-event
// feed. Auth already happened in the middleware.
func (h *Handler) ServeFeed(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &opsfeed.WebSocketClient{
		ID:   uuid.NewString(),
		Hub:  h.Hub,
		Conn: conn,
		Send: make(chan models.TicketEvent, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
