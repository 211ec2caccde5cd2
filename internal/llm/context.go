package llm

import "context"

type callKey struct{}

// callInfo labels a model call for logs and the usage table.
type callInfo struct {
	purpose   string
	requestID string
}

func infoFrom(ctx context.Context) callInfo {
	info, _ := ctx.Value(callKey{}).(callInfo)
	return info
}

// WithPurpose tags model calls made with ctx, e.g. "tutor-chat".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	info := infoFrom(ctx)
	info.purpose = purpose
	return context.WithValue(ctx, callKey{}, info)
}

// PurposeFrom returns the purpose tag, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := infoFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// WithRequestID ties model calls to the inbound request that caused them.
func WithRequestID(ctx context.Context, id string) context.Context {
	info := infoFrom(ctx)
	info.requestID = id
	return context.WithValue(ctx, callKey{}, info)
}

// RequestIDFrom returns the request id, or "".
func RequestIDFrom(ctx context.Context) string {
	return infoFrom(ctx).requestID
}
