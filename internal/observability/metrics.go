package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/contentflow-backend/internal/platform/envutil"
	"github.com/yungbote/contentflow-backend/internal/platform/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	workflowCommands *CounterVec
	workflowLatency  *HistogramVec

	aggregateOps         *CounterVec
	aggregateLatency     *HistogramVec
	aggregateConflict    *CounterVec
	aggregateUnavailable *CounterVec

	ticketsAllocated *CounterVec

	notificationsCreated *CounterVec
	fanoutFailures       *CounterVec

	pgStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

func Current() *Metrics {
	return instance
}

func scrapeInterval() time.Duration {
	d := envutil.Duration("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// Init returns the process-wide registry, or nil when METRICS_ENABLED is off.
// Every method on a nil *Metrics is a no-op.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("Observability metrics enabled")
		}
	})
	return instance
}

// New builds an unregistered metrics set.
func New() *Metrics {
	latency := []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10}
	return &Metrics{
		apiRequests: NewCounterVec("contentflow_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"contentflow_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("contentflow_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("contentflow_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("contentflow_api_requests_error_total", "Total API requests answered with a 5xx status."),

		workflowCommands: NewCounterVec("contentflow_workflow_commands_total", "Workflow commands by command/status.", []string{"command", "status"}),
		workflowLatency:  NewHistogramVec("contentflow_workflow_command_duration_seconds", "Workflow command latency in seconds.", []string{"command", "status"}, latency),

		aggregateOps:         NewCounterVec("contentflow_aggregate_operations_total", "Aggregate writes by operation/status.", []string{"operation", "status"}),
		aggregateLatency:     NewHistogramVec("contentflow_aggregate_operation_duration_seconds", "Aggregate write latency in seconds.", []string{"operation", "status"}, latency),
		aggregateConflict:    NewCounterVec("contentflow_aggregate_conflicts_total", "Aggregate writes rejected by a stale lock version.", []string{"operation"}),
		aggregateUnavailable: NewCounterVec("contentflow_aggregate_unavailable_total", "Aggregate writes failed because the store was unavailable.", []string{"operation"}),

		ticketsAllocated: NewCounterVec("contentflow_tickets_allocated_total", "Ticket codes handed out by backend.", []string{"backend"}),

		notificationsCreated: NewCounterVec("contentflow_notifications_created_total", "Notification rows inserted by type.", []string{"type"}),
		fanoutFailures:       NewCounterVec("contentflow_notification_fanout_failures_total", "Notification fan-out failures by type/stage.", []string{"type", "stage"}),

		pgStats:   NewGaugeVec("contentflow_db_pool", "Database connection pool stats.", []string{"stat"}),
		redisUp:   NewGauge("contentflow_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("contentflow_redis_ping_seconds", "Redis ping latency in seconds."),
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           http.HandlerFunc(m.WriteHTTP),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	return writeAll(w,
		m.apiRequests, m.apiLatency, m.apiInflight, m.apiReqTotal, m.apiReqError,
		m.workflowCommands, m.workflowLatency,
		m.aggregateOps, m.aggregateLatency, m.aggregateConflict, m.aggregateUnavailable,
		m.ticketsAllocated,
		m.notificationsCreated, m.fanoutFailures,
		m.pgStats, m.redisUp, m.redisPing,
	)
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveWorkflowCommand records one workflow command; status is "success" or
// the error code the command failed with.
func (m *Metrics) ObserveWorkflowCommand(command, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.workflowCommands.Inc(command, status)
	m.workflowLatency.Observe(dur.Seconds(), command, status)
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(operation, status)
	m.aggregateLatency.Observe(dur.Seconds(), operation, status)
}

func (m *Metrics) IncAggregateConflict(operation string) {
	if m == nil {
		return
	}
	m.aggregateConflict.Inc(operation)
}

func (m *Metrics) IncAggregateUnavailable(operation string) {
	if m == nil {
		return
	}
	m.aggregateUnavailable.Inc(operation)
}

func (m *Metrics) IncTicketAllocated(backend string) {
	if m == nil {
		return
	}
	m.ticketsAllocated.Inc(backend)
}

func (m *Metrics) AddNotificationsCreated(typ string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.notificationsCreated.Add(float64(n), typ)
}

// IncFanoutFailure counts a failed fan-out step; stage is "directory", "store"
// or "realtime".
func (m *Metrics) IncFanoutFailure(typ, stage string) {
	if m == nil {
		return
	}
	m.fanoutFailures.Inc(typ, stage)
}

func (m *Metrics) StartPostgresCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.pgStats.Set(float64(stats.OpenConnections), "open_connections")
				m.pgStats.Set(float64(stats.InUse), "in_use")
				m.pgStats.Set(float64(stats.Idle), "idle")
				m.pgStats.Set(float64(stats.WaitCount), "wait_count")
				m.pgStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.pgStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	interval := scrapeInterval()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}

// WorkflowCommands reads back one command counter series.
func (m *Metrics) WorkflowCommands(command, status string) float64 {
	if m == nil {
		return 0
	}
	return m.workflowCommands.Value(command, status)
}

func (m *Metrics) FanoutFailures(typ, stage string) float64 {
	if m == nil {
		return 0
	}
	return m.fanoutFailures.Value(typ, stage)
}
