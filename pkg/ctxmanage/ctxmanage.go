package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ctxKey int

// TraceIdKey is the request context key holding the trace id set by middleware.Logger.
const TraceIdKey ctxKey = 1

// WithTraceId stores traceId in ctx.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}

// GetTraceId returns the trace id stored in ctx, or "" when there is none.
func GetTraceId(ctx context.Context) string {
	traceId, _ := ctx.Value(TraceIdKey).(string)
	return traceId
}

// GetTraceIdOfRequest returns the trace id of the request, minting one when the
// Logger middleware did not run (tests that mount a single handler).
func GetTraceIdOfRequest(c *gin.Context) string {
	traceId := GetTraceId(c.Request.Context())
	if traceId == "" {
		traceId = uuid.NewString()
		c.Request = c.Request.WithContext(WithTraceId(c.Request.Context(), traceId))
	}
	return traceId
}
