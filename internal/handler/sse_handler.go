package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/prize_address/internal/refdata"
	"github.com/GTDGit/prize_address/internal/sse"
)

// SSEHandler streams reference data publish events to browsers.
type SSEHandler struct {
	hub       *sse.Hub
	holder    *refdata.Holder
	keepAlive time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub, holder *refdata.Holder) *SSEHandler {
	return &SSEHandler{hub: hub, holder: holder, keepAlive: 30 * time.Second}
}

// Stream handles GET /v1/events
// The first event carries the current dataset states so a client that
// connects after the initial load does not wait for the next reload.
func (h *SSEHandler) Stream(c *gin.Context) {
	clientID := uuid.New().String()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	snap := h.holder.Snapshot()
	c.SSEvent("connected", gin.H{
		"clientId": clientID,
		"complete": snap.AllLoaded(),
		"datasets": snap.Statuses(),
	})
	c.Writer.Flush()

	log.Debug().Str("client_id", clientID).Msg("SSE stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent(string(sse.EventRefDataPublished), string(data))
			return true
		case <-time.After(h.keepAlive):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
