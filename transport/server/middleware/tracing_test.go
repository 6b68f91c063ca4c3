package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingLogger captures formatted error messages
type recordingLogger struct {
	mux      sync.Mutex
	messages []string
}

func (l *recordingLogger) Errorf(format string, args ...interface{}) {
	l.mux.Lock()
	defer l.mux.Unlock()
	l.messages = append(l.messages, fmt.Sprintf(format, args...))
}

func (l *recordingLogger) Messages() []string {
	l.mux.Lock()
	defer l.mux.Unlock()
	return append([]string(nil), l.messages...)
}

func methodCall(id interface{}, method string, params string) *jsonrpc.Call {
	request := &jsonrpc.Request{Id: id, Jsonrpc: jsonrpc.Version, Method: method}
	if params != "" {
		request.Params = json.RawMessage(params)
	}
	return jsonrpc.NewMethodCall(request)
}

func notificationCall(method string, params string) *jsonrpc.Call {
	notification := &jsonrpc.Notification{Jsonrpc: jsonrpc.Version, Method: method}
	if params != "" {
		notification.Params = json.RawMessage(params)
	}
	return jsonrpc.NewNotificationCall(notification)
}

// resolveWith returns a Next resolving asynchronously with output
func resolveWith(output *jsonrpc.Response) transport.Next {
	return func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
		future := transport.NewFuture()
		go func() {
			time.Sleep(time.Millisecond)
			future.Resolve(output)
		}()
		return future
	}
}

func TestTracing_describe(t *testing.T) {
	tests := []struct {
		name string
		call *jsonrpc.Call
		want string
	}{
		{
			name: "method call",
			call: methodCall(1, "foo", `{"x": 1}`),
			want: `method = "foo", params = {"x": 1}`,
		},
		{
			name: "method call without params",
			call: methodCall(1, "getinfo", ""),
			want: `method = "getinfo", params = null`,
		},
		{
			name: "method call with positional params",
			call: methodCall(1, "getblock", `["00ab", 1]`),
			want: `method = "getblock", params = ["00ab", 1]`,
		},
		{
			name: "method name with quotes",
			call: methodCall(1, `a"b`, `[]`),
			want: `method = "a\"b", params = []`,
		},
		{
			name: "notification",
			call: notificationCall("ping", "null"),
			want: `notification = "ping", params = null`,
		},
		{
			name: "notification without params",
			call: notificationCall("ping", ""),
			want: `notification = "ping", params = null`,
		},
		{
			name: "invalid call",
			call: jsonrpc.NewInvalidCall([]byte(`{"foo":"boo"}`)),
			want: "invalid request",
		},
		{
			name: "nil call",
			want: "invalid request",
		},
		{
			name: "method variant without request",
			call: &jsonrpc.Call{Type: jsonrpc.CallTypeMethod},
			want: "invalid request",
		},
	}

	tracing := NewTracing(&recordingLogger{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := tracing.describe(tt.call)
			second := tracing.describe(tt.call)
			assert.Equal(t, tt.want, first)
			assert.Equal(t, first, second)
		})
	}
}

func TestTracing_logErrorIfMethodNotFound(t *testing.T) {
	tests := []struct {
		name     string
		output   *jsonrpc.Response
		wantLogs int
	}{
		{
			name:     "absent output",
			output:   nil,
			wantLogs: 0,
		},
		{
			name:     "success",
			output:   jsonrpc.NewResponse(1, []byte(`42`)),
			wantLogs: 0,
		},
		{
			name:     "method not found",
			output:   jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil)),
			wantLogs: 1,
		},
		{
			name:     "method not found with data",
			output:   jsonrpc.NewErrorResponse(nil, jsonrpc.NewError(jsonrpc.MethodNotFound, "", "details")),
			wantLogs: 1,
		},
		{
			name:     "invalid params",
			output:   jsonrpc.NewErrorResponse(1, jsonrpc.NewInvalidParamsError("Invalid params", nil)),
			wantLogs: 0,
		},
		{
			name:     "internal error",
			output:   jsonrpc.NewErrorResponse(1, jsonrpc.NewInternalError("Internal error", nil)),
			wantLogs: 0,
		},
		{
			name:     "invalid request",
			output:   jsonrpc.NewErrorResponse(nil, jsonrpc.NewInvalidRequest("Invalid request", nil)),
			wantLogs: 0,
		},
		{
			name:     "server error",
			output:   jsonrpc.NewErrorResponse(1, jsonrpc.NewError(-32099, "Server error", nil)),
			wantLogs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			tracing := NewTracing(logger)
			got := tracing.logErrorIfMethodNotFound(tt.output, `method = "foo", params = null`)
			assert.Same(t, tt.output, got)
			messages := logger.Messages()
			assert.Len(t, messages, tt.wantLogs)
			for _, message := range messages {
				assert.Equal(t, `Received unrecognized RPC request: method = "foo", params = null`, message)
			}
		})
	}
}

func TestTracing_OnCall(t *testing.T) {
	tests := []struct {
		name        string
		call        *jsonrpc.Call
		output      *jsonrpc.Response
		wantMessage string
	}{
		{
			name:        "unknown method",
			call:        methodCall(1, "foo", `{"x": 1}`),
			output:      jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil)),
			wantMessage: `Received unrecognized RPC request: method = "foo", params = {"x": 1}`,
		},
		{
			name:   "notification without response",
			call:   notificationCall("ping", "null"),
			output: nil,
		},
		{
			name:   "success",
			call:   methodCall(2, "foo", `[]`),
			output: jsonrpc.NewResponse(2, []byte(`42`)),
		},
		{
			name:        "invalid call resolved with method not found",
			call:        jsonrpc.NewInvalidCall([]byte(`{}`)),
			output:      jsonrpc.NewErrorResponse(nil, jsonrpc.NewMethodNotFound("Method not found", nil)),
			wantMessage: "Received unrecognized RPC request: invalid request",
		},
		{
			name:   "other failure",
			call:   methodCall(3, "foo", `[]`),
			output: jsonrpc.NewErrorResponse(3, jsonrpc.NewInvalidParamsError("Invalid params", nil)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &recordingLogger{}
			tracing := NewTracing(logger)
			var forwarded *jsonrpc.Call
			next := func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
				forwarded = call
				return resolveWith(tt.output)(ctx, call)
			}

			output, err := tracing.OnCall(context.Background(), tt.call, next).Wait(context.Background())
			require.NoError(t, err)
			assert.Same(t, tt.call, forwarded)
			assert.Same(t, tt.output, output)
			if tt.output != nil {
				assert.Equal(t, *tt.output, *output)
			}
			messages := logger.Messages()
			if tt.wantMessage == "" {
				assert.Empty(t, messages)
				return
			}
			assert.Equal(t, []string{tt.wantMessage}, messages)
		})
	}
}

func TestTracing_OnCall_DescribesBeforeResolution(t *testing.T) {
	logger := &recordingLogger{}
	tracing := NewTracing(logger)
	call := methodCall(1, "foo", `{"x":1}`)
	next := func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
		// downstream mutations are not reflected in the diagnostic
		call.Request.Method = "changed"
		return transport.Resolved(jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil)))
	}
	_, err := tracing.OnCall(context.Background(), call, next).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`Received unrecognized RPC request: method = "foo", params = {"x":1}`}, logger.Messages())
}

func TestTracing_OnCall_DoesNotBlock(t *testing.T) {
	logger := &recordingLogger{}
	tracing := NewTracing(logger)
	pending := transport.NewFuture()
	next := func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
		return pending
	}

	returned := make(chan *transport.Future, 1)
	go func() {
		returned <- tracing.OnCall(context.Background(), methodCall(1, "foo", ""), next)
	}()
	var future *transport.Future
	select {
	case future = <-returned:
	case <-time.After(time.Second):
		t.Fatal("OnCall blocked on an unresolved output")
	}
	assert.Nil(t, future.Output())
	assert.Empty(t, logger.Messages())

	expected := jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil))
	pending.Resolve(expected)
	output, err := future.Wait(context.Background())
	require.NoError(t, err)
	assert.Same(t, expected, output)
	assert.Len(t, logger.Messages(), 1)
}

func TestTracing_OnCall_Cancelled(t *testing.T) {
	logger := &recordingLogger{}
	tracing := NewTracing(logger)
	pending := transport.NewFuture()
	ctx, cancel := context.WithCancel(context.Background())

	future := tracing.OnCall(ctx, methodCall(1, "foo", ""), func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
		return pending
	})
	cancel()

	_, err := future.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, logger.Messages())
	assert.Nil(t, future.Output())
}

func TestTracing_OnCall_CancelledAfterResolution(t *testing.T) {
	for i := 0; i < 200; i++ {
		logger := &recordingLogger{}
		tracing := NewTracing(logger)
		pending := transport.NewFuture()
		ctx, cancel := context.WithCancel(context.Background())

		future := tracing.OnCall(ctx, methodCall(i, "foo", `{"x": 1}`), func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
			return pending
		})
		expected := jsonrpc.NewErrorResponse(i, jsonrpc.NewMethodNotFound("Method not found", nil))
		pending.Resolve(expected)
		cancel()

		select {
		case <-future.Done():
		case <-time.After(time.Second):
			t.Fatalf("resolved output withheld at iteration %d", i)
		}
		assert.Same(t, expected, future.Output())
		assert.Equal(t, []string{`Received unrecognized RPC request: method = "foo", params = {"x": 1}`}, logger.Messages())
	}
}

func TestTracing_OnCall_ReceivedParams(t *testing.T) {
	call, err := jsonrpc.ParseCall([]byte(`{"jsonrpc":"2.0","id":1,"method":"foo","params":{"x": 1}}`))
	require.NoError(t, err)
	logger := &recordingLogger{}
	next := resolveWith(jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil)))

	_, err = NewTracing(logger).OnCall(context.Background(), call, next).Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{`Received unrecognized RPC request: method = "foo", params = {"x": 1}`}, logger.Messages())
}

func TestTracing_OnCall_Concurrent(t *testing.T) {
	const calls = 64
	logger := &recordingLogger{}
	tracing := NewTracing(logger)

	type outcome struct {
		call   *jsonrpc.Call
		output *jsonrpc.Response
	}
	outcomes := make([]outcome, calls)
	var expected []string
	for i := 0; i < calls; i++ {
		method := fmt.Sprintf("m%d", i)
		call := methodCall(i, method, fmt.Sprintf(`[%d]`, i))
		var output *jsonrpc.Response
		switch i % 4 {
		case 0:
			output = jsonrpc.NewErrorResponse(i, jsonrpc.NewMethodNotFound("Method not found", nil))
			expected = append(expected, fmt.Sprintf(`Received unrecognized RPC request: method = %q, params = [%d]`, method, i))
		case 1:
			output = jsonrpc.NewResponse(i, []byte(`true`))
		case 2:
			output = jsonrpc.NewErrorResponse(i, jsonrpc.NewInternalError("Internal error", nil))
		case 3:
			call = notificationCall(method, "null")
		}
		outcomes[i] = outcome{call: call, output: output}
	}

	random := rand.New(rand.NewSource(7))
	delays := random.Perm(calls)
	var wg sync.WaitGroup
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := outcomes[i]
			next := func(ctx context.Context, call *jsonrpc.Call) *transport.Future {
				future := transport.NewFuture()
				go func() {
					time.Sleep(time.Duration(delays[i]) * 100 * time.Microsecond)
					future.Resolve(item.output)
				}()
				return future
			}
			output, err := tracing.OnCall(context.Background(), item.call, next).Wait(context.Background())
			assert.NoError(t, err)
			assert.Same(t, item.output, output)
		}(i)
	}
	wg.Wait()

	assert.ElementsMatch(t, expected, logger.Messages())
}

func TestTracing_ZapSink(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	tracing := NewTracing(jsonrpc.NewZapLogger(zap.New(core)))
	next := resolveWith(jsonrpc.NewErrorResponse(1, jsonrpc.NewMethodNotFound("Method not found", nil)))

	_, err := tracing.OnCall(context.Background(), methodCall(1, "foo", `{"x":1}`), next).Wait(context.Background())
	require.NoError(t, err)

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
		assert.Contains(t, entries[0].Message, `method = "foo", params = {"x":1}`)
	}
}
