// Package middleware provides interceptors for the server dispatch pipeline.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
)

const invalidRequestDescription = "invalid request"

// Tracing logs calls that resolved with a method not found failure.
// It never modifies the call or its output.
type Tracing struct {
	logger jsonrpc.Logger
}

// OnCall describes the call, forwards it to next and inspects the output once it resolves
func (t *Tracing) OnCall(ctx context.Context, call *jsonrpc.Call, next transport.Next) *transport.Future {
	description := t.describe(call)
	future := next(ctx, call)
	if future == nil {
		return nil
	}
	return future.Then(ctx, func(output *jsonrpc.Response) *jsonrpc.Response {
		return t.logErrorIfMethodNotFound(output, description)
	})
}

// describe returns the method name and the received parameters of a call
func (t *Tracing) describe(call *jsonrpc.Call) string {
	if call == nil {
		return invalidRequestDescription
	}
	switch call.Type {
	case jsonrpc.CallTypeMethod:
		if call.Request == nil {
			return invalidRequestDescription
		}
		return fmt.Sprintf("method = %q, params = %s", call.Request.Method, renderParams(call.Request.Params))
	case jsonrpc.CallTypeNotification:
		if call.Notification == nil {
			return invalidRequestDescription
		}
		return fmt.Sprintf("notification = %q, params = %s", call.Notification.Method, renderParams(call.Notification.Params))
	default:
		return invalidRequestDescription
	}
}

// logErrorIfMethodNotFound logs an error if output is a method not found failure, output is returned as is
func (t *Tracing) logErrorIfMethodNotFound(output *jsonrpc.Response, description string) *jsonrpc.Response {
	if output != nil && output.Error != nil && output.Error.Code == jsonrpc.MethodNotFound {
		t.logger.Errorf("Received unrecognized RPC request: %s", description)
	}
	return output
}

// renderParams renders params as received, absent params render as null
func renderParams(params json.RawMessage) string {
	if len(params) == 0 {
		return "null"
	}
	return string(params)
}

// NewTracing creates a tracing interceptor, a nil logger falls back to jsonrpc.DefaultLogger
func NewTracing(logger jsonrpc.Logger) *Tracing {
	if logger == nil {
		logger = jsonrpc.DefaultLogger
	}
	return &Tracing{logger: logger}
}
