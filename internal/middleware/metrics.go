// internal/middleware/metrics.go
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/javajoker/autoimport-backend/internal/metrics"
)

// Metrics records request counts, durations and errors per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		metrics.APIRequestCounter.With(prometheus.Labels{
			"method": method,
			"path":   path,
		}).Inc()

		metrics.RequestDurationHistogram.With(prometheus.Labels{
			"method": method,
			"path":   path,
			"status": status,
		}).Observe(time.Since(start).Seconds())

		if c.Writer.Status() >= 400 {
			metrics.APIErrorCounter.With(prometheus.Labels{
				"method": method,
				"path":   path,
				"status": status,
			}).Inc()
		}
	}
}
