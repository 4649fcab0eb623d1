package realtime

import (
	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Channels map[string]bool
	Outbound chan SSEMessage
	done     chan struct{}
	Logger   *logger.Logger
}

// UserChannel is the per-recipient channel notifications are pushed on.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
