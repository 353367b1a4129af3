package context

import (
	"context"

	"github.com/google/uuid"
)

// TraceContext carries the identifiers that tie one request's log lines
// and spans together. RequestID is echoed back to the client; TraceID
// survives across service hops.
type TraceContext struct {
	TraceID   string
	SpanID    string
	RequestID string
}

type traceContextKey struct{}

// WithTrace adds TraceContext to context.
func WithTrace(ctx context.Context, trace *TraceContext) context.Context {
	return context.WithValue(ctx, traceContextKey{}, trace)
}

// GetTrace returns TraceContext from context, or nil.
func GetTrace(ctx context.Context) *TraceContext {
	if v, ok := ctx.Value(traceContextKey{}).(*TraceContext); ok {
		return v
	}
	return nil
}

// GetTraceID returns the trace ID from context, generating a fresh one
// for callers running outside a request (workers, CLI).
func GetTraceID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.TraceID
	}
	return uuid.New().String()
}

// GetRequestID returns the request ID from context or empty string.
func GetRequestID(ctx context.Context) string {
	if t := GetTrace(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// NewTraceContext creates a TraceContext with generated IDs.
func NewTraceContext() *TraceContext {
	return &TraceContext{
		TraceID:   uuid.New().String(),
		SpanID:    newSpanID(),
		RequestID: uuid.New().String(),
	}
}

// newSpanID produces a short span identifier. Sixteen hex chars is
// enough: spans only need to be unique within one trace.
func newSpanID() string {
	return uuid.New().String()[:16]
}
