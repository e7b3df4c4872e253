package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"go.ngs.io/geotides/internal/logging"
	"go.ngs.io/geotides/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// requestContext attaches a request ID and a request scoped logger to the
// request context, echoes the ID and records the request.
func requestContext(base logging.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()
		if id := c.GetHeader(requestIDHeader); id != "" {
			ctx = logging.ContextWithRequestID(ctx, id)
		}
		ctx, log := logging.WithRequestLogger(ctx, base)
		ctx = logging.ContextWithLogger(ctx, log)
		c.Request = c.Request.WithContext(ctx)
		c.Header(requestIDHeader, logging.RequestIDFromContext(ctx))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.ObserveRequest(c.Request.Method, route, status, elapsed)
		log.Info(ctx, "request served",
			logging.String("method", c.Request.Method),
			logging.String("route", route),
			logging.Int("status", status),
			logging.Float("duration_ms", float64(elapsed.Microseconds())/1000))
	}
}
