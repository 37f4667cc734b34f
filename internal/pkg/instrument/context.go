package instrument

import "context"

type runIDKey struct{}

// WithRunID returns a context carrying the campaign run ID. Every log record
// written under this context gets a run_id attribute.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// GetRunID returns the campaign run ID carried by ctx, or "".
func GetRunID(ctx context.Context) string {
	if v, ok := ctx.Value(runIDKey{}).(string); ok {
		return v
	}
	return ""
}
