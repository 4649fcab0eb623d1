package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/data/repos/contents"
	"github.com/yungbote/contentflow-backend/internal/data/repos/notifications"
	"github.com/yungbote/contentflow-backend/internal/data/repos/requests"
	"github.com/yungbote/contentflow-backend/internal/data/repos/sequence"
	"github.com/yungbote/contentflow-backend/internal/data/repos/user"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ContentRequestRepo = requests.ContentRequestRepo
type RequestListFilter = requests.ListFilter
type TicketSequenceRepo = sequence.TicketSequenceRepo

type ContentRepo = contents.ContentRepo
type RevisionRepo = contents.RevisionRepo

type NotificationRepo = notifications.NotificationRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewContentRequestRepo(db *gorm.DB, baseLog *logger.Logger) ContentRequestRepo {
	return requests.NewContentRequestRepo(db, baseLog)
}
func NewTicketSequenceRepo(db *gorm.DB, baseLog *logger.Logger) TicketSequenceRepo {
	return sequence.NewTicketSequenceRepo(db, baseLog)
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return contents.NewContentRepo(db, baseLog)
}
func NewRevisionRepo(db *gorm.DB, baseLog *logger.Logger) RevisionRepo {
	return contents.NewRevisionRepo(db, baseLog)
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notifications.NewNotificationRepo(db, baseLog)
}

// Set bundles every table repo for wiring.
type Set struct {
	Users         UserRepo
	Requests      ContentRequestRepo
	Sequences     TicketSequenceRepo
	Contents      ContentRepo
	Revisions     RevisionRepo
	Notifications NotificationRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:         NewUserRepo(db, baseLog),
		Requests:      NewContentRequestRepo(db, baseLog),
		Sequences:     NewTicketSequenceRepo(db, baseLog),
		Contents:      NewContentRepo(db, baseLog),
		Revisions:     NewRevisionRepo(db, baseLog),
		Notifications: NewNotificationRepo(db, baseLog),
	}
}
