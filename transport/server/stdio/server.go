package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"github.com/viant/jsonrpc-tracing/transport/server/base"
)

const sessionKey = "stdio"

// Server represents a server that reads newline delimited messages and writes responses line by line
type Server struct {
	base         *base.Handler
	session      *base.Session
	reader       io.Reader
	writer       io.Writer
	errWriter    io.Writer
	logger       jsonrpc.Logger
	interceptors []transport.Interceptor
	ctx          context.Context
}

type line struct {
	data []byte
	err  error
}

// ListenAndServe reads and dispatches messages until the input ends or the context is done.
// Every line is handled in its own goroutine; in-flight calls are awaited before returning.
func (s *Server) ListenAndServe() error {
	if s.reader == nil {
		return fmt.Errorf("reader is not initialized")
	}
	done := make(chan struct{})
	defer close(done)
	lines := s.readLines(done)

	wg := sync.WaitGroup{}
	defer wg.Wait()
	for {
		select {
		case <-s.ctx.Done():
			return s.ctx.Err()
		case next := <-lines:
			if len(next.data) > 0 {
				wg.Add(1)
				go func(data []byte) {
					defer wg.Done()
					s.base.HandleMessage(s.ctx, s.session, data, nil)
				}(next.data)
			}
			if next.err == nil {
				continue
			}
			if errors.Is(next.err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", next.err)
		}
	}
}

// readLines reads the input in a single goroutine, it stops on the first read error or once done is closed
func (s *Server) readLines(done chan struct{}) <-chan line {
	lines := make(chan line)
	reader := bufio.NewReader(s.reader)
	go func() {
		for {
			data, err := reader.ReadBytes('\n')
			select {
			case lines <- line{data: data, err: err}:
			case <-done:
				return
			}
			if err != nil {
				return
			}
		}
	}()
	return lines
}

// Session returns the stdio session
func (s *Server) Session() *base.Session {
	return s.session
}

// New creates a new stdio transport instance with the provided handler and options
func New(ctx context.Context, newHandler transport.NewHandler, options ...Option) *Server {
	if ctx == nil {
		ctx = context.Background()
	}
	ret := &Server{
		reader:    os.Stdin,
		writer:    os.Stdout,
		errWriter: os.Stderr,
		ctx:       ctx,
	}
	for _, option := range options {
		option(ret)
	}
	if ret.logger == nil {
		ret.logger = jsonrpc.NewStdLogger(ret.errWriter)
	}
	ret.base = base.NewHandler(base.WithInterceptors(ret.interceptors...), base.WithLogger(ret.logger))
	ret.session = base.NewSession(ctx, sessionKey, ret.writer, newHandler, base.WithFramer(base.FrameLine))
	ret.base.Sessions.Put(sessionKey, ret.session)
	return ret
}
