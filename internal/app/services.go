package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/clients/redis"
	"github.com/yungbote/contentflow-backend/internal/data/aggregates"
	"github.com/yungbote/contentflow-backend/internal/data/repos"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/services"
)

type Services struct {
	Directory     services.UserDirectory
	Notifications services.NotificationService
	Workflow      services.WorkflowService
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	tickets, err := wireTicketAllocator(ctx, log, cfg, reposet, clients, metrics)
	if err != nil {
		return Services{}, err
	}

	agg := aggregates.NewWorkflowAggregate(aggregates.WorkflowAggregateDeps{
		Base: aggregates.BaseDeps{
			DB:     db,
			Log:    log,
			Runner: aggregates.NewGormTxRunner(db),
			Hooks:  aggregates.NewObservabilityHooks(metrics),
		},
		Requests:  reposet.Requests,
		Contents:  reposet.Contents,
		Revisions: reposet.Revisions,
		Tickets:   tickets,
	})

	templates, err := services.LoadNotificationTemplates()
	if err != nil {
		return Services{}, fmt.Errorf("load notification templates: %w", err)
	}

	emitter := services.NewBusEmitter(clients.Bus)
	directory := services.NewUserDirectory(log, reposet.Users)
	notifications := services.NewNotificationService(log, reposet.Notifications, templates, emitter, metrics)

	workflow := services.NewWorkflowService(services.WorkflowServiceDeps{
		Log:           log,
		Aggregate:     agg,
		Requests:      reposet.Requests,
		Contents:      reposet.Contents,
		Directory:     directory,
		Notifications: notifications,
		Files:         clients.Files,
		Emitter:       emitter,
		Metrics:       metrics,
	})

	return Services{
		Directory:     directory,
		Notifications: notifications,
		Workflow:      workflow,
	}, nil
}

func wireTicketAllocator(ctx context.Context, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients, metrics *observability.Metrics) (aggregates.TicketAllocator, error) {
	switch cfg.TicketBackend {
	case services.TicketBackendRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("ticket backend %q needs a redis client", services.TicketBackendRedis)
		}
		seq := redis.NewSequence(clients.Redis, "")
		floor, err := services.AlignTicketCounter(ctx, reposet.Requests, reposet.Sequences, cfg.TicketPrefix, seq)
		if err != nil {
			return nil, fmt.Errorf("align redis ticket sequence: %w", err)
		}
		log.Info("Ticket sequence backend", "backend", services.TicketBackendRedis, "prefix", cfg.TicketPrefix, "floor", floor)
		return services.NewRedisTicketAllocator(seq, cfg.TicketPrefix, metrics), nil
	default:
		floor, err := services.AlignTicketCounter(ctx, reposet.Requests, reposet.Sequences, cfg.TicketPrefix, services.NewDBTicketCounter(reposet.Sequences))
		if err != nil {
			return nil, fmt.Errorf("align ticket sequence: %w", err)
		}
		log.Info("Ticket sequence backend", "backend", services.TicketBackendDB, "prefix", cfg.TicketPrefix, "floor", floor)
		return services.NewSequenceTicketAllocator(reposet.Sequences, cfg.TicketPrefix, metrics), nil
	}
}
