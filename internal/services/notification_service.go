package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	types "github.com/yungbote/contentflow-backend/internal/domain"
	domainagg "github.com/yungbote/contentflow-backend/internal/domain/aggregates"
	"github.com/yungbote/contentflow-backend/internal/domain/notifications"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/realtime"
	"github.com/yungbote/contentflow-backend/internal/workflow"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService interface {
	// Notify writes one notification per distinct recipient and returns how
	// many rows were new. Replaying the same effect inserts nothing.
	Notify(ctx context.Context, effect workflow.NotifyEffect, recipients []uuid.UUID) (int, error)
	ListForUser(ctx context.Context, actor types.User, unreadOnly bool, limit int) ([]*types.Notification, error)
	UnreadCount(ctx context.Context, actor types.User) (int64, error)
	MarkRead(ctx context.Context, actor types.User, id uuid.UUID) error
	MarkAllRead(ctx context.Context, actor types.User) (int64, error)
}

type notificationService struct {
	log       *logger.Logger
	repo      repos.NotificationRepo
	templates *NotificationTemplates
	emitter   SSEEmitter
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewNotificationService(
	log *logger.Logger,
	repo repos.NotificationRepo,
	templates *NotificationTemplates,
	emitter SSEEmitter,
	metrics *observability.Metrics,
) NotificationService {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	return &notificationService{
		log:       log.With("service", "NotificationService"),
		repo:      repo,
		templates: templates,
		emitter:   emitter,
		metrics:   metrics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) Notify(ctx context.Context, effect workflow.NotifyEffect, recipients []uuid.UUID) (int, error) {
	const op = "notifications.Notify"
	ids := workflow.Dedupe(recipients)
	if len(ids) == 0 {
		return 0, nil
	}
	if effect.Ref.IsZero() {
		return 0, domainagg.NewError(domainagg.CodeValidation, op, "notification has no related item", nil)
	}
	title, message, err := s.templates.Render(effect.Template, effect.Data)
	if err != nil {
		return 0, domainagg.NewError(domainagg.CodeInternal, op, "render notification", err)
	}

	now := s.now()
	rows := make([]*types.Notification, 0, len(ids))
	for _, id := range ids {
		n := notifications.New(id, effect.Type, title, message, effect.Ref, effect.EventKey)
		n.CreatedAt = now
		rows = append(rows, n)
	}
	inserted, err := s.repo.InsertIgnoringDuplicates(ctx, nil, rows)
	if err != nil {
		s.metrics.IncFanoutFailure(string(effect.Type), "store")
		return 0, aggregates.MapError(op, err)
	}
	s.metrics.AddNotificationsCreated(string(effect.Type), int(inserted))

	if inserted > 0 {
		for _, n := range rows {
			msg := realtime.SSEMessage{
				Channel: realtime.UserChannel(n.UserID),
				Event:   realtime.SSEEventNotificationCreated,
				Data:    n,
			}
			if err := s.emitter.Emit(ctx, msg); err != nil {
				s.metrics.IncFanoutFailure(string(effect.Type), "realtime")
				s.log.Warn("realtime emit failed", "error", err, "user_id", n.UserID, "event_key", effect.EventKey)
			}
		}
	}
	return int(inserted), nil
}

func (s *notificationService) ListForUser(ctx context.Context, actor types.User, unreadOnly bool, limit int) ([]*types.Notification, error) {
	const op = "notifications.ListForUser"
	if err := requireReader(op, actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	list, err := s.repo.ListForUser(ctx, nil, actor.ID, unreadOnly, limit)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return list, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, actor types.User) (int64, error) {
	const op = "notifications.UnreadCount"
	if err := requireReader(op, actor); err != nil {
		return 0, err
	}
	n, err := s.repo.CountUnread(ctx, nil, actor.ID)
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	return n, nil
}

// MarkRead flags one of the actor's own notifications. Another user's id is
// reported as not found so ids cannot be probed.
func (s *notificationService) MarkRead(ctx context.Context, actor types.User, id uuid.UUID) error {
	const op = "notifications.MarkRead"
	if err := requireReader(op, actor); err != nil {
		return err
	}
	n, err := s.repo.MarkRead(ctx, nil, id, actor.ID, s.now())
	if err != nil {
		return aggregates.MapError(op, err)
	}
	if n == 0 {
		return domainagg.NewError(domainagg.CodeNotFound, op, "notification not found", nil)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, actor types.User) (int64, error) {
	const op = "notifications.MarkAllRead"
	if err := requireReader(op, actor); err != nil {
		return 0, err
	}
	n, err := s.repo.MarkAllRead(ctx, nil, actor.ID, s.now())
	if err != nil {
		return 0, aggregates.MapError(op, err)
	}
	return n, nil
}

func requireReader(op string, actor types.User) error {
	return workflow.Authorize(op, actor, workflow.ActionReadNotification, workflow.OwnedBy(actor.ID))
}
