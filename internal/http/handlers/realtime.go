package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/events streams the caller's notifications and workflow updates.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	client := h.hub.NewSSEClient(actor.ID)
	h.hub.AddChannel(client, realtime.UserChannel(actor.ID))
	h.log.Debug("sse stream open", "user_id", actor.ID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("sse stream closed", "user_id", actor.ID, "client_id", client.ID)
}
