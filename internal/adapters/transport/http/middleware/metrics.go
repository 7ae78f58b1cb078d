package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mohamedaliSwe/mimi-style/internal/infra/metrics"
)

func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ts := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, route, c.Writer.Status(), time.Since(ts))
	}
}
