package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
)

// service is a demo method table, unknown methods fail with method not found
type service struct {
	notifier transport.Notifier
}

func (s *service) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) *jsonrpc.Error {
	switch request.Method {
	case "ping":
		response.Result = []byte(`"pong"`)
	case "echo":
		response.Result = request.Params
	case "time":
		data, err := json.Marshal(time.Now().UTC().Format(time.RFC3339))
		if err != nil {
			return jsonrpc.NewInternalError(err.Error(), nil)
		}
		response.Result = data
	case "notify":
		if err := s.notifier.Notify(ctx, &jsonrpc.Notification{Method: "notified", Params: request.Params}); err != nil {
			return jsonrpc.NewInternalError(err.Error(), nil)
		}
		response.Result = []byte(`true`)
	default:
		return jsonrpc.NewMethodNotFound("Method not found", request.Method)
	}
	return nil
}

func (s *service) OnNotification(ctx context.Context, notification *jsonrpc.Notification) *jsonrpc.Error {
	switch notification.Method {
	case "ping":
		return nil
	}
	return jsonrpc.NewMethodNotFound("Method not found", notification.Method)
}

func newService(ctx context.Context, notifier transport.Notifier) transport.Handler {
	return &service{notifier: notifier}
}
