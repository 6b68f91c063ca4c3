package transport

import (
	"context"

	"github.com/viant/jsonrpc-tracing"
)

// Handler resolves calls for a session
type Handler interface {
	// Serve handles a method call, a returned error replaces any result set on response
	Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) *jsonrpc.Error
	// OnNotification handles a notification, notifications never produce a response
	OnNotification(ctx context.Context, notification *jsonrpc.Notification) *jsonrpc.Error
}

// NewHandler is a function that creates a new Handler
type NewHandler func(ctx context.Context, notifier Notifier) Handler
