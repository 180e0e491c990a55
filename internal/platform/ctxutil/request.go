package ctxutil

import "context"

type requestIDsKey struct{}

// RequestIDs correlates one HTTP request across logs and job events.
type RequestIDs struct {
	TraceID   string
	RequestID string
}

func WithRequestIDs(ctx context.Context, ids RequestIDs) context.Context {
	return context.WithValue(ctx, requestIDsKey{}, ids)
}

func RequestIDsFrom(ctx context.Context) (RequestIDs, bool) {
	if ctx == nil {
		return RequestIDs{}, false
	}
	ids, ok := ctx.Value(requestIDsKey{}).(RequestIDs)
	return ids, ok
}

// LogFields returns trace_id/request_id pairs for logger calls, or nil.
func LogFields(ctx context.Context) []interface{} {
	ids, ok := RequestIDsFrom(ctx)
	if !ok {
		return nil
	}
	var out []interface{}
	if ids.TraceID != "" {
		out = append(out, "trace_id", ids.TraceID)
	}
	if ids.RequestID != "" {
		out = append(out, "request_id", ids.RequestID)
	}
	return out
}
