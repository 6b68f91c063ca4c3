package middleware

import (
	"context"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"golang.org/x/time/rate"
)

// RateLimit rejects calls above the configured rate before they are resolved
type RateLimit struct {
	limiter *rate.Limiter
}

// OnCall forwards the call when a token is available, otherwise resolves it with a server busy failure.
// Rejected notifications are dropped.
func (l *RateLimit) OnCall(ctx context.Context, call *jsonrpc.Call, next transport.Next) *transport.Future {
	if l.limiter.Allow() {
		return next(ctx, call)
	}
	var id jsonrpc.RequestId
	if call != nil {
		switch call.Type {
		case jsonrpc.CallTypeNotification:
			return transport.Resolved(nil)
		case jsonrpc.CallTypeMethod:
			if call.Request != nil {
				id = call.Request.Id
			}
		}
	}
	return transport.Resolved(jsonrpc.NewErrorResponse(id, jsonrpc.NewServerBusy("rate limit exceeded", nil)))
}

// NewRateLimit creates a token bucket rate limiter allowing r calls per second with the given burst
func NewRateLimit(r float64, burst int) *RateLimit {
	return &RateLimit{limiter: rate.NewLimiter(rate.Limit(r), burst)}
}
