package base

import (
	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
)

// Option represents session option
type Option func(s *Session)

// WithFramer sets the function wrapping every outgoing message
func WithFramer(framer FrameMessage) Option {
	return func(s *Session) {
		s.framer = framer
	}
}

// HandlerOption represents handler option
type HandlerOption func(h *Handler)

// WithInterceptors sets interceptors applied to every call, the first one is the outermost
func WithInterceptors(interceptors ...transport.Interceptor) HandlerOption {
	return func(h *Handler) {
		h.interceptors = append(h.interceptors, interceptors...)
	}
}

// WithLogger sets the logger used for pipeline failures
func WithLogger(logger jsonrpc.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithSessionStore sets the session store
func WithSessionStore(store SessionStore) HandlerOption {
	return func(h *Handler) {
		h.Sessions = store
	}
}
