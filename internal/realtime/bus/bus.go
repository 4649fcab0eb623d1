package bus

import (
	"context"

	"github.com/yungbote/contentflow-backend/internal/realtime"
)

// Bus carries realtime messages between API replicas. Each replica forwards
// what it receives into its local hub.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
