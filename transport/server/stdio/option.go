package stdio

import (
	"io"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
)

// Option represents a functional option for configuring the stdio transport
type Option func(*Server)

// WithReader sets the input reader
func WithReader(reader io.Reader) Option {
	return func(s *Server) {
		s.reader = reader
	}
}

// WithWriter sets the output writer
func WithWriter(writer io.Writer) Option {
	return func(s *Server) {
		s.writer = writer
	}
}

// WithErrorWriter sets the error output writer, it is used unless a logger is set explicitly
func WithErrorWriter(writer io.Writer) Option {
	return func(s *Server) {
		s.errWriter = writer
	}
}

// WithLogger sets the logger
func WithLogger(logger jsonrpc.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithInterceptors sets interceptors applied to every call, the first one is the outermost
func WithInterceptors(interceptors ...transport.Interceptor) Option {
	return func(s *Server) {
		s.interceptors = append(s.interceptors, interceptors...)
	}
}
