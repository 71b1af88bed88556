// Package handler is the ops HTTP surface: health, closure stats and the
// live ticket-event feed for dashboards.
package handler

import (
	"errors"
	"net/http"

	"ticketgogo/backend/internal/opsfeed"
	"ticketgogo/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler holds the feed hub and the storage used by the read endpoints.
type Handler struct {
	Hub       *opsfeed.Manager
	Storage   storage.Storage
	JWTSecret []byte
}

func NewHandler(hub *opsfeed.Manager, s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{Hub: hub, Storage: s, JWTSecret: jwtSecret}
}

// Healthz reports process liveness.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats returns the closure leaderboard.
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Storage.ClosureStats()
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
