package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"
)

// RequestIDs accepts caller-supplied ids, otherwise prefers the active span's
// trace id and mints uuids for the rest. Both are echoed back as headers.
func RequestIDs() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := ctxutil.RequestIDs{
			TraceID:   strings.TrimSpace(c.GetHeader(headerTraceID)),
			RequestID: strings.TrimSpace(c.GetHeader(headerRequestID)),
		}
		if ids.TraceID == "" {
			if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
				ids.TraceID = sc.TraceID().String()
			} else {
				ids.TraceID = uuid.NewString()
			}
		}
		if ids.RequestID == "" {
			ids.RequestID = uuid.NewString()
		}

		c.Request = c.Request.WithContext(ctxutil.WithRequestIDs(c.Request.Context(), ids))
		c.Header(headerTraceID, ids.TraceID)
		c.Header(headerRequestID, ids.RequestID)
		c.Next()
	}
}
