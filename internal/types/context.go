package types

import "context"

type contextKey string

const dispatchIDKey contextKey = "dispatch_id"

// WithDispatchID stores the dispatch trace ID in the context. The dispatcher
// assigns one ID per event so log lines and outbound trace headers from all
// channels of one fan-out can be correlated.
func WithDispatchID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, dispatchIDKey, id)
}

// GetDispatchID retrieves the dispatch trace ID from the context, or "" when
// none is set.
func GetDispatchID(ctx context.Context) string {
	id, _ := ctx.Value(dispatchIDKey).(string)
	return id
}
