package middleware

import (
	"context"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/viant/jsonrpc-tracing"

// Span records a server span for every call
type Span struct {
	tracer trace.Tracer
}

// OnCall starts a span, forwards the call with the span context and ends the span once the output resolves
func (s *Span) OnCall(ctx context.Context, call *jsonrpc.Call, next transport.Next) *transport.Future {
	name := "jsonrpc"
	method := call.Method()
	if method != "" {
		name += "/" + method
	}
	callType := jsonrpc.CallTypeInvalid
	if call != nil {
		callType = call.Type
	}
	ctx, span := s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("rpc.system", "jsonrpc"),
			attribute.String("rpc.method", method),
			attribute.String("rpc.jsonrpc.call_type", string(callType)),
		))
	future := next(ctx, call)
	if future == nil {
		span.End()
		return nil
	}
	go func() {
		defer span.End()
		select {
		case <-future.Done():
			if output := future.Output(); output != nil && output.Error != nil {
				span.SetAttributes(attribute.Int("rpc.jsonrpc.error_code", output.Error.Code))
				span.SetStatus(codes.Error, output.Error.Message)
			}
		case <-ctx.Done():
			span.SetStatus(codes.Error, ctx.Err().Error())
		}
	}()
	return future
}

// NewSpan creates a span interceptor, a nil tracer uses the global tracer provider
func NewSpan(tracer trace.Tracer) *Span {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return &Span{tracer: tracer}
}
