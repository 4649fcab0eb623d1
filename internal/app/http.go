package app

import (
	apphttp "github.com/yungbote/contentflow-backend/internal/http"
	httpH "github.com/yungbote/contentflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/contentflow-backend/internal/http/middleware"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
	"github.com/yungbote/contentflow-backend/internal/realtime"
)

type Middleware struct {
	Actor *httpMW.ActorMiddleware
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Request      *httpH.RequestHandler
	Content      *httpH.ContentHandler
	Notification *httpH.NotificationHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, checks map[string]httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(checks),
		Request:      httpH.NewRequestHandler(log, services.Workflow),
		Content:      httpH.NewContentHandler(log, services.Workflow),
		Notification: httpH.NewNotificationHandler(log, services.Notifications),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Actor: httpMW.NewActorMiddleware(log, services.Directory),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		CORSOrigins:         cfg.CORSOrigins,
		ServiceName:         cfg.ServiceName,
		Tracing:             cfg.OtelEnabled,
		ActorMiddleware:     middleware.Actor,
		HealthHandler:       handlers.Health,
		RequestHandler:      handlers.Request,
		ContentHandler:      handlers.Content,
		NotificationHandler: handlers.Notification,
		RealtimeHandler:     handlers.Realtime,
	})
}
