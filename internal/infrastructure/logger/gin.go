package logger

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id in and out of the service. The
// request id middleware stores the resolved value under the same gin key.
const RequestIDHeader = "X-Request-ID"

// GinMiddleware puts a request scoped logger on the request context and
// writes one access log line per request. Paths in skip are served silently.
func GinMiddleware(base *zap.Logger, skip ...string) gin.HandlerFunc {
	silent := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		silent[p] = struct{}{}
	}
	base = base.Named("http")

	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetString(RequestIDHeader)
		if requestID == "" {
			requestID = c.GetHeader(RequestIDHeader)
		}
		ctx := c.Request.Context()
		if requestID != "" {
			ctx = WithRequestID(ctx, requestID)
		}
		c.Request = c.Request.WithContext(WithContext(ctx, base))

		c.Next()

		if _, ok := silent[c.FullPath()]; ok {
			return
		}

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		if q := c.Request.URL.RawQuery; q != "" {
			fields = append(fields, zap.String("query", q))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.Strings("errors", c.Errors.Errors()))
		}

		// Tenant and user are known only after auth ran, so enrich at the end.
		l := Enrich(c.Request.Context(), base)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("HTTP request", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("HTTP request", fields...)
		default:
			l.Info("HTTP request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 and logs it with its stack
func Recovery(base *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				Enrich(c.Request.Context(), base).Error("Panic recovered",
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Any("panic", rec),
					zap.Stack("stacktrace"))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "ERR_INTERNAL",
						"message": "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}

// FromGin returns the request logger installed by GinMiddleware, enriched
// with the correlation fields of the request.
func FromGin(c *gin.Context) *zap.Logger {
	return L(c.Request.Context())
}
