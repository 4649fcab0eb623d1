package domain

import (
	"github.com/yungbote/contentflow-backend/internal/domain/contents"
	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/domain/requests"
	"github.com/yungbote/contentflow-backend/internal/domain/user"
)

type User = user.User

type ContentRequest = requests.ContentRequest
type TicketSequence = requests.TicketSequence
type Assignment = requests.Assignment
type Brief = requests.Brief
type RequestStats = requests.Stats

type Content = contents.Content
type Revision = contents.Revision
type FileAttachment = contents.FileAttachment
type VersionHistory = contents.VersionHistory

type Notification = notifications.Notification

// Models lists every persisted model in migration order.
func Models() []any {
	return []any{
		&User{},
		&TicketSequence{},
		&ContentRequest{},
		&Content{},
		&Revision{},
		&Notification{},
	}
}
