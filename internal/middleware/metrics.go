package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gorm-trashbin/pkg/metrics"
)

// Metrics observes request latency per route. Requests that miss every route
// are recorded under their raw path; scrapes of the metrics endpoint itself
// are not observed.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}

		metrics.APILatency.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
