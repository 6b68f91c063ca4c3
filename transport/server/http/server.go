package http

import (
	"context"
	"net"
	"net/http"

	"golang.org/x/net/netutil"
)

// Server represents an HTTP server with a handler and address
type Server struct {
	server         http.Server
	handler        http.Handler
	addr           string
	maxConnections int
}

// Start listens on the server address and serves requests until the server is shut down
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve serves requests accepted by listener, limited to maxConnections simultaneous connections when set
func (s *Server) Serve(listener net.Listener) error {
	if s.maxConnections > 0 {
		listener = netutil.LimitListener(listener, s.maxConnections)
	}
	return s.server.Serve(listener)
}

// Shutdown gracefully stops the server, waiting for active requests to complete
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// NewServer creates a server
func NewServer(addr string, handler http.Handler, options ...ServerOption) *Server {
	ret := &Server{
		addr:    addr,
		handler: handler,
	}
	ret.server.Addr = addr
	ret.server.Handler = handler
	for _, option := range options {
		option(ret)
	}
	return ret
}
