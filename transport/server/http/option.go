package http

import (
	"time"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"github.com/viant/jsonrpc-tracing/transport/server/http/session"
)

// Options exposes configurable attributes of the handler.
type Options struct {
	// URI of the endpoint (default: /rpc)
	URI string

	// SessionLocation defines where session id is transported (header or query param)
	SessionLocation *session.Location

	// SessionTTL evicts sessions idle for longer, zero disables idle eviction
	SessionTTL time.Duration

	// MaxSessions caps stored sessions, the least recently active idle session is evicted first; zero means unlimited
	MaxSessions int

	interceptors []transport.Interceptor
	logger       jsonrpc.Logger
}

// Option mutates Options.
type Option func(*Options)

// WithURI sets custom URI.
func WithURI(uri string) Option {
	return func(o *Options) { o.URI = uri }
}

// WithSessionLocation overrides default session location.
func WithSessionLocation(loc *session.Location) Option {
	return func(o *Options) { o.SessionLocation = loc }
}

// WithSessionTTL sets the idle session time to live.
func WithSessionTTL(ttl time.Duration) Option {
	return func(o *Options) { o.SessionTTL = ttl }
}

// WithMaxSessions sets the maximum number of stored sessions.
func WithMaxSessions(n int) Option {
	return func(o *Options) { o.MaxSessions = n }
}

// WithInterceptors sets interceptors applied to every call, the first one is the outermost
func WithInterceptors(interceptors ...transport.Interceptor) Option {
	return func(o *Options) { o.interceptors = append(o.interceptors, interceptors...) }
}

// WithLogger sets the logger used for pipeline failures
func WithLogger(logger jsonrpc.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// ServerOption mutates Server.
type ServerOption func(*Server)

// WithMaxConnections limits the number of simultaneously accepted connections, zero means unlimited
func WithMaxConnections(n int) ServerOption {
	return func(s *Server) { s.maxConnections = n }
}
