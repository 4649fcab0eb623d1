package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/contentflow-backend/internal/http/response"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/services"
)

type NotificationHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
}

func NewNotificationHandler(log *logger.Logger, notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{log: log.With("handler", "NotificationHandler"), notifications: notifications}
}

// GET /api/notifications?unread=true&limit=50
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.notifications.ListForUser(c.Request.Context(), actor, unreadOnly, limit)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	unread, err := h.notifications.UnreadCount(c.Request.Context(), actor)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": list, "unread": unread})
}

// PATCH /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), actor, id); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id, "is_read": true})
}

// PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	n, err := h.notifications.MarkAllRead(c.Request.Context(), actor)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": n})
}
