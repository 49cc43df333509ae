// Package trace provides request-scoped tracing identifiers.
package trace

import (
	"context"

	"github.com/google/uuid"
)

// Trace contains request tracing information.
type Trace struct {
	TraceID   string
	RequestID string
}

type traceKey struct{}

// WithTrace adds Trace to context.
func WithTrace(ctx context.Context, t *Trace) context.Context {
	return context.WithValue(ctx, traceKey{}, t)
}

// FromContext returns Trace from context, or nil.
func FromContext(ctx context.Context) *Trace {
	if v, ok := ctx.Value(traceKey{}).(*Trace); ok {
		return v
	}
	return nil
}

// RequestID returns the request ID from context or empty string.
func RequestID(ctx context.Context) string {
	if t := FromContext(ctx); t != nil {
		return t.RequestID
	}
	return ""
}

// New creates a Trace with generated IDs.
func New() *Trace {
	return &Trace{
		TraceID:   uuid.New().String(),
		RequestID: uuid.New().String(),
	}
}
