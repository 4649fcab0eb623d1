package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/contentflow-backend/internal/observability"
)

// Metrics records per-route counts, latency and in-flight requests. Routes are
// labelled by their pattern; unmatched paths share one label. The realtime
// stream is long-lived and only counted as in-flight.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		switch route {
		case "":
			route = "unmatched"
		case "/api/events":
			return
		}
		m.ObserveAPI(c.Request.Method, route, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
