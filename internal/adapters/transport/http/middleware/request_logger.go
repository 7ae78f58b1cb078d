package middleware

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var sensitiveHeaders = []string{"authorization", "cookie"}

func scrub(h http.Header) http.Header {
	clone := h.Clone()
	for k := range clone {
		lk := strings.ToLower(k)
		for _, s := range sensitiveHeaders {
			if strings.Contains(lk, s) {
				clone[k] = []string{"[redacted]"}
			}
		}
	}
	return clone
}

// RequestLogger logs every request with credentials stripped from the
// headers. Bodies are never logged.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ce := log.Check(zap.DebugLevel, "incoming request"); ce != nil {
			hdr, _ := json.Marshal(scrub(c.Request.Header))
			ce.Write(
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("origin", c.GetHeader("Origin")),
				zap.ByteString("hdr", hdr),
			)
		}

		ts := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(ts)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		}

		if c.IsAborted() {
			log.Warn("aborted", fields...)
			return
		}
		for _, e := range c.Errors {
			log.Error("handler error", append(fields, zap.Error(e.Err))...)
		}
		log.Info("completed", fields...)
	}
}
