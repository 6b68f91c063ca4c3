package transport

import (
	"context"

	"github.com/viant/jsonrpc-tracing"
)

// Interceptor defines an interface for intercepting inbound JSON-RPC calls around their resolution.
// An implementation that only observes must return the output of next unchanged.
type Interceptor interface {
	// OnCall is called for every inbound call before it is resolved, next resolves the call downstream
	OnCall(ctx context.Context, call *jsonrpc.Call, next Next) *Future
}

// InterceptorFunc adapts a function to Interceptor
type InterceptorFunc func(ctx context.Context, call *jsonrpc.Call, next Next) *Future

// OnCall calls fn
func (fn InterceptorFunc) OnCall(ctx context.Context, call *jsonrpc.Call, next Next) *Future {
	return fn(ctx, call, next)
}

// Chain composes interceptors into a single Next decorator, the first interceptor is the outermost
func Chain(interceptors ...Interceptor) func(next Next) Next {
	return func(next Next) Next {
		for i := len(interceptors) - 1; i >= 0; i-- {
			next = wrap(interceptors[i], next)
		}
		return next
	}
}

func wrap(interceptor Interceptor, next Next) Next {
	return func(ctx context.Context, call *jsonrpc.Call) *Future {
		return interceptor.OnCall(ctx, call, next)
	}
}
