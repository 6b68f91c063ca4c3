package transport

import (
	"context"
	"sync"

	"github.com/viant/jsonrpc-tracing"
)

// Future represents an eventual call output, a nil output means the call produced no response
type Future struct {
	output *jsonrpc.Response
	done   chan struct{}
	once   sync.Once
}

// NewFuture creates an unresolved future
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved creates a future already resolved with output
func Resolved(output *jsonrpc.Response) *Future {
	ret := NewFuture()
	ret.Resolve(output)
	return ret
}

// Resolve sets the output, only the first call has effect
func (f *Future) Resolve(output *jsonrpc.Response) {
	f.once.Do(func() {
		f.output = output
		close(f.done)
	})
}

// Done returns a channel closed once the future is resolved
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Output returns the resolved output, it returns nil before the future is resolved
func (f *Future) Output() *jsonrpc.Response {
	select {
	case <-f.done:
		return f.output
	default:
		return nil
	}
}

// Wait waits for the future to resolve
func (f *Future) Wait(ctx context.Context) (*jsonrpc.Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.output, nil
	}
}

// Then returns a future resolved with fn applied to this future's output.
// fn runs once this future resolves, regardless of ctx state afterwards; if ctx is done before
// the resolution, fn never runs and the returned future never resolves.
func (f *Future) Then(ctx context.Context, fn func(output *jsonrpc.Response) *jsonrpc.Response) *Future {
	ret := NewFuture()
	select {
	case <-f.done:
		ret.Resolve(fn(f.output))
		return ret
	default:
	}
	go func() {
		select {
		case <-f.done:
		case <-ctx.Done():
			select {
			case <-f.done:
			default:
				return
			}
		}
		ret.Resolve(fn(f.output))
	}()
	return ret
}
