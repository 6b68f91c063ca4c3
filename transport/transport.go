package transport

import (
	"context"
	"fmt"

	"github.com/viant/jsonrpc-tracing"
)

// Next resolves a call into an eventual output. It must not block on the resolution itself.
type Next func(ctx context.Context, call *jsonrpc.Call) *Future

// Resolver returns a Next that runs handler in its own goroutine.
//
// A method call resolves with a success or failure response, a notification resolves with a nil
// output and an invalid call resolves with an invalid request failure.
// Notification handler failures have no response and are logged with logger instead,
// a nil logger falls back to jsonrpc.DefaultLogger.
func Resolver(handler Handler, logger jsonrpc.Logger) Next {
	if logger == nil {
		logger = jsonrpc.DefaultLogger
	}
	return func(ctx context.Context, call *jsonrpc.Call) *Future {
		future := NewFuture()
		go func() {
			defer func() {
				if r := recover(); r != nil {
					future.Resolve(internalError(call, r))
				}
			}()
			future.Resolve(resolve(ctx, handler, call, logger))
		}()
		return future
	}
}

func resolve(ctx context.Context, handler Handler, call *jsonrpc.Call, logger jsonrpc.Logger) *jsonrpc.Response {
	switch {
	case isMethod(call):
		request := call.Request
		response := &jsonrpc.Response{Id: request.Id, Jsonrpc: jsonrpc.Version}
		if err := handler.Serve(ctx, request, response); err != nil {
			response.Error = err
		}
		if response.Error != nil {
			response.Result = nil
		} else if response.Result == nil {
			response.Result = []byte("null")
		}
		return response
	case call != nil && call.Type == jsonrpc.CallTypeNotification && call.Notification != nil:
		if err := handler.OnNotification(ctx, call.Notification); err != nil {
			logger.Errorf("failed to handle notification %q: %v", call.Notification.Method, err)
		}
		return nil
	default:
		return jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidRequest("Invalid request", nil))
	}
}

func isMethod(call *jsonrpc.Call) bool {
	return call != nil && call.Type == jsonrpc.CallTypeMethod && call.Request != nil
}

func internalError(call *jsonrpc.Call, cause interface{}) *jsonrpc.Response {
	if !isMethod(call) {
		return nil
	}
	return jsonrpc.NewErrorResponse(call.Request.Id, jsonrpc.NewInternalError("Internal error", fmt.Sprint(cause)))
}
