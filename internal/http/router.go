package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/contentflow-backend/internal/http/handlers"
	httpMW "github.com/yungbote/contentflow-backend/internal/http/middleware"
	"github.com/yungbote/contentflow-backend/internal/observability"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	ServiceName string
	Tracing     bool

	ActorMiddleware *httpMW.ActorMiddleware

	RequestHandler      *httpH.RequestHandler
	ContentHandler      *httpH.ContentHandler
	NotificationHandler *httpH.NotificationHandler
	RealtimeHandler     *httpH.RealtimeHandler
	HealthHandler       *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		name := cfg.ServiceName
		if name == "" {
			name = "contentflow"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	api.Use(httpMW.RequestLogger(cfg.Log))
	if cfg.ActorMiddleware != nil {
		api.Use(cfg.ActorMiddleware.RequireActor())
	}

	// Requests
	if h := cfg.RequestHandler; h != nil {
		api.POST("/requests", h.Submit)
		api.GET("/requests/stats/summary", h.Stats)
		api.GET("/requests/ticket/:code", h.GetByTicket)
		api.GET("/requests/:id", h.Get)
		api.PUT("/requests/:id", h.Update)
		api.DELETE("/requests/:id", h.Delete)
		api.GET("/requests/:id/contents", h.ListContents)
		api.PATCH("/requests/:id/validate", h.Validate)
		api.PATCH("/requests/:id/assign", h.Assign)
		api.PATCH("/requests/:id/status", h.SetStatus)
		api.PATCH("/requests/:id/force-status", h.ForceStatus)
		api.PATCH("/requests/:id/schedule", h.Schedule)
		api.PATCH("/requests/:id/publish", h.Publish)
	}

	// Contents
	if h := cfg.ContentHandler; h != nil {
		api.POST("/contents", h.Create)
		api.GET("/contents/:id", h.Get)
		api.PUT("/contents/:id", h.Edit)
		api.DELETE("/contents/:id", h.Delete)
		api.POST("/contents/:id/files", h.AttachFiles)
		api.GET("/contents/:id/versions", h.Versions)
		api.PATCH("/contents/:id/review", h.SubmitForReview)
		api.PATCH("/contents/:id/approve", h.Approve)
		api.PATCH("/contents/:id/reject", h.Reject)
		api.PATCH("/contents/:id/revision", h.RequestRevision)
	}

	// Notifications
	if h := cfg.NotificationHandler; h != nil {
		api.GET("/notifications", h.List)
		api.PATCH("/notifications/read-all", h.MarkAllRead)
		api.PATCH("/notifications/:id/read", h.MarkRead)
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		api.GET("/events", cfg.RealtimeHandler.Stream)
	}

	return r
}
