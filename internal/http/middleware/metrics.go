package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/factdeck-backend/internal/observability"
)

const metricsPath = "/metrics"

// Metrics observes every request except scrapes of the metrics endpoint itself.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil || c.Request.URL.Path == metricsPath {
			c.Next()
			return
		}
		m.ApiInflightInc()
		start := time.Now()
		c.Next()
		m.ApiInflightDec()
		m.ObserveAPI(c.Request.Method, routeOf(c), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
