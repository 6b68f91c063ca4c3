package base

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
)

// ErrNoWriter is returned when a message is sent to a session without a writer
var ErrNoWriter = errors.New("session has no writer")

// Session represents a client connection with its own handler
type Session struct {
	Id      string `json:"id"`
	Writer  io.Writer
	Handler transport.Handler
	framer  FrameMessage
	err     error
	sync.Mutex

	CreatedAt time.Time
	LastSeen  time.Time
}

// SetError sets error
func (s *Session) SetError(err error) {
	s.Mutex.Lock()
	s.err = err
	s.Mutex.Unlock()
}

// Error returns error
func (s *Session) Error() error {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.err
}

func (s *Session) frameMessage(data []byte) []byte {
	if s.framer == nil {
		return data
	}
	return s.framer(data)
}

// SendResponse sends response
func (s *Session) SendResponse(ctx context.Context, response *jsonrpc.Response) error {
	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	s.SendData(ctx, data)
	return s.Error()
}

// Notify sends a server notification to the client, it fails with ErrNoWriter when no writer is attached
func (s *Session) Notify(ctx context.Context, notification *jsonrpc.Notification) error {
	if notification.Jsonrpc == "" {
		notification.Jsonrpc = jsonrpc.Version
	}
	data, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	if s.Writer == nil {
		return fmt.Errorf("%w: session %v", ErrNoWriter, s.Id)
	}
	s.LastSeen = time.Now()
	if _, err = s.Writer.Write(s.frameMessage(data)); err != nil {
		s.err = err
	}
	return s.err
}

// SendData sends framed data to the session writer
func (s *Session) SendData(ctx context.Context, data []byte) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.LastSeen = time.Now()
	if s.Writer == nil {
		return
	}
	if _, err := s.Writer.Write(s.frameMessage(data)); err != nil {
		s.err = err
	}
}

// SetWriter attaches writer to the session, a nil writer detaches the current one and clears the write error
func (s *Session) SetWriter(writer io.Writer) {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	s.Writer = writer
	s.err = nil
	s.LastSeen = time.Now()
}

// Streaming returns true when a writer is attached
func (s *Session) Streaming() bool {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.Writer != nil
}

// LastActive returns the LastSeen timestamp
func (s *Session) LastActive() time.Time {
	s.Mutex.Lock()
	defer s.Mutex.Unlock()
	return s.LastSeen
}

// Touch updates LastSeen timestamp.
func (s *Session) Touch() {
	s.Mutex.Lock()
	s.LastSeen = time.Now()
	s.Mutex.Unlock()
}

// NewSession creates a session, an empty id is replaced with a generated one
func NewSession(ctx context.Context, id string, writer io.Writer, newHandler transport.NewHandler, options ...Option) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	ret := &Session{
		Id:        id,
		Writer:    writer,
		CreatedAt: now,
		LastSeen:  now,
	}
	for _, option := range options {
		option(ret)
	}
	ret.Handler = newHandler(ctx, ret)
	return ret
}
