package domain

import "context"

type contextKey string

// TraceContextKey carries the per-request trace id set by the tracing middleware.
const TraceContextKey contextKey = "trace_id"

// WithTraceID returns a child context carrying traceID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceContextKey, traceID)
}

// TraceIDFromContext returns the trace id or "" when none was set.
func TraceIDFromContext(ctx context.Context) string {
	traceID, _ := ctx.Value(TraceContextKey).(string)
	return traceID
}
