package base

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"golang.org/x/sync/errgroup"
)

// Handler represents a jsonrpc endpoint, it decodes messages into calls and resolves them through interceptors
type Handler struct {
	Sessions     SessionStore
	interceptors []transport.Interceptor
	chain        func(next transport.Next) transport.Next
	logger       jsonrpc.Logger
}

// HandleMessage handles a single message or a batch for the session.
// The encoded output is written to output, or sent to the session writer when output is nil;
// nothing is written when no call produced a response.
func (h *Handler) HandleMessage(ctx context.Context, session *Session, data []byte, output io.Writer) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return
	}
	session.Touch()
	ctx = context.WithValue(ctx, jsonrpc.SessionKey, session)

	var encoded []byte
	if data[0] == '[' {
		encoded = h.handleBatch(ctx, session, data)
	} else {
		encoded = h.handleSingle(ctx, session, data)
	}
	if len(encoded) == 0 {
		return
	}
	if output != nil {
		if _, err := output.Write(encoded); err != nil {
			h.logger.Errorf("failed to write response for session %v: %v", session.Id, err)
		}
		return
	}
	session.SendData(ctx, encoded)
}

func (h *Handler) handleSingle(ctx context.Context, session *Session, data []byte) []byte {
	call, err := jsonrpc.ParseCall(data)
	if err != nil {
		return h.encode(jsonrpc.NewErrorResponse(nil, jsonrpc.NewParsingError("Parse error", nil)))
	}
	output := h.Dispatch(ctx, session, call)
	if output == nil {
		return nil
	}
	return h.encode(output)
}

func (h *Handler) handleBatch(ctx context.Context, session *Session, data []byte) []byte {
	batch := jsonrpc.BatchRequest{}
	if err := json.Unmarshal(data, &batch); err != nil {
		if !json.Valid(data) {
			return h.encode(jsonrpc.NewErrorResponse(nil, jsonrpc.NewParsingError("Parse error", nil)))
		}
		return h.encode(jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidRequest("Invalid request", nil)))
	}
	calls := batch.Calls()
	outputs := make([]*jsonrpc.Response, len(calls))
	group := errgroup.Group{}
	for i := range calls {
		i := i
		group.Go(func() error {
			outputs[i] = h.Dispatch(ctx, session, calls[i])
			return nil
		})
	}
	_ = group.Wait()

	responses := make(jsonrpc.BatchResponse, 0, len(outputs))
	for _, output := range outputs {
		if output != nil {
			responses = append(responses, output)
		}
	}
	if len(responses) == 0 {
		return nil
	}
	return h.encode(responses)
}

// Dispatch resolves a call with the session handler through the interceptor chain and waits for its output.
// It returns nil for calls without a response or when ctx is done first.
func (h *Handler) Dispatch(ctx context.Context, session *Session, call *jsonrpc.Call) *jsonrpc.Response {
	next := h.chain(transport.Resolver(session.Handler, h.logger))
	future := next(ctx, call)
	if future == nil {
		return nil
	}
	output, err := future.Wait(ctx)
	if err != nil {
		return nil
	}
	return output
}

func (h *Handler) encode(value interface{}) []byte {
	data, err := json.Marshal(value)
	if err != nil {
		h.logger.Errorf("failed to encode response: %v", err)
		return nil
	}
	return data
}

// NewHandler creates a handler
func NewHandler(options ...HandlerOption) *Handler {
	ret := &Handler{
		Sessions: NewMemorySessionStore(),
		logger:   jsonrpc.DefaultLogger,
	}
	for _, option := range options {
		option(ret)
	}
	ret.chain = transport.Chain(ret.interceptors...)
	return ret
}
