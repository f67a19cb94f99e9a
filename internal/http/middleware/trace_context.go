package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/factdeck-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// AttachTraceContext resolves the trace and request ids, echoes them as response headers and
// stores them on the request context for logging and job payloads.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		td := &ctxutil.TraceData{
			TraceID:   traceIDFor(c, span),
			RequestID: headerOrNew(c, headerRequestID),
		}
		span.SetAttributes(attribute.String("factdeck.request_id", td.RequestID))

		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Header(headerTraceID, td.TraceID)
		c.Header(headerRequestID, td.RequestID)
		c.Next()
	}
}

// traceIDFor takes the caller's header first, then the active otel span.
func traceIDFor(c *gin.Context, span trace.Span) string {
	if v := strings.TrimSpace(c.GetHeader(headerTraceID)); v != "" {
		return v
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	return uuid.NewString()
}

func headerOrNew(c *gin.Context, name string) string {
	if v := strings.TrimSpace(c.GetHeader(name)); v != "" {
		return v
	}
	return uuid.NewString()
}
