package middleware

import (
	"time"

	"backoffice/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags the request context with a request id and writes one line per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := log.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		ctx = c.Request.Context()
		if userID, role := Actor(c); userID != "" || role != "" {
			ctx = log.WithUserID(ctx, userID)
			ctx = log.WithActorRole(ctx, role)
		}
		ctx = log.WithFields(ctx, map[string]any{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
		})

		switch {
		case c.Writer.Status() >= 500:
			var err error
			if last := c.Errors.Last(); last != nil {
				err = last.Err
			}
			log.Error(ctx, "request failed", err)
		case c.Writer.Status() >= 400:
			log.Warn(ctx, "request rejected")
		default:
			log.Info(ctx, "request completed")
		}
	}
}
