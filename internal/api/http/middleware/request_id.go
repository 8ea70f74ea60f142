package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderName is the request-id header, accepted inbound and echoed outbound.
// The analyzer client forwards it on backend calls so a submission can be
// traced end to end across both services.
const HeaderName = "X-Request-Id"

type requestIDKey struct{}

// RequestID tags every request with a stable identifier: the inbound
// X-Request-Id header when present, a fresh UUID otherwise. The id is stored
// in the request context, echoed in the response header, and included in the
// access log line written after the handler runs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderName)
		if strings.TrimSpace(rid) == "" {
			rid = uuid.NewString()
		}

		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set(HeaderName, rid)

		start := time.Now()
		c.Next()

		log.Printf(
			"[req] id=%s method=%s path=%s status=%d latency=%s",
			rid,
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start),
		)
	}
}

// WithRequestID returns a context carrying the given request id.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// GetRequestID extracts the request ID from a context, or "" if absent.
func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}
