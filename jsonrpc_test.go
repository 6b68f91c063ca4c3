package jsonrpc

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Request
		wantError bool
	}{
		{
			name:  "valid request",
			input: `{"jsonrpc":"2.0","method":"test","id":1,"params":{"name":"test"}}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      json.Number("1"),
				Params:  json.RawMessage(`{"name":"test"}`),
			},
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"method":"test","id":1,"params":{"name":"test"}}`,
			wantError: true,
		},
		{
			name:      "missing method",
			input:     `{"jsonrpc":"2.0","id":1,"params":{"name":"test"}}`,
			wantError: true,
		},
		{
			name:      "missing id",
			input:     `{"jsonrpc":"2.0","method":"test","params":{"name":"test"}}`,
			wantError: true,
		},
		{
			name:  "null id",
			input: `{"jsonrpc":"2.0","method":"test","id":null}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
			},
		},
		{
			name:  "large integer id",
			input: `{"jsonrpc":"2.0","method":"test","id":9007199254740993}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      json.Number("9007199254740993"),
			},
		},
		{
			name:  "params optional",
			input: `{"jsonrpc":"2.0","method":"test","id":"a"}`,
			want: &Request{
				Jsonrpc: "2.0",
				Method:  "test",
				Id:      "a",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Request
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.want.Jsonrpc, got.Jsonrpc)
			assert.Equal(t, tt.want.Method, got.Method)
			if !reflect.DeepEqual(got.Id, tt.want.Id) {
				t.Errorf("Id: got %v (%T), want %v (%T)", got.Id, got.Id, tt.want.Id, tt.want.Id)
			}
			if len(tt.want.Params) > 0 {
				assert.JSONEq(t, string(tt.want.Params), string(got.Params))
			}
		})
	}
}

func TestNotification_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Notification
		wantError bool
	}{
		{
			name:  "valid notification",
			input: `{"jsonrpc":"2.0","method":"test","params":{"name":"test"}}`,
			want: &Notification{
				Jsonrpc: "2.0",
				Method:  "test",
				Params:  json.RawMessage(`{"name":"test"}`),
			},
		},
		{
			name:  "without params",
			input: `{"jsonrpc":"2.0","method":"ping"}`,
			want:  &Notification{Jsonrpc: "2.0", Method: "ping"},
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"method":"test","params":{"name":"test"}}`,
			wantError: true,
		},
		{
			name:      "missing method",
			input:     `{"jsonrpc":"2.0","params":{"name":"test"}}`,
			wantError: true,
		},
		{
			name:      "with id field (not allowed)",
			input:     `{"jsonrpc":"2.0","method":"test","id":1,"params":{"name":"test"}}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Notification
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.want.Jsonrpc, got.Jsonrpc)
			assert.Equal(t, tt.want.Method, got.Method)
			assert.Equal(t, string(tt.want.Params), string(got.Params))
		})
	}
}

func TestResponse_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      *Response
		wantError bool
	}{
		{
			name:  "valid response",
			input: `{"jsonrpc":"2.0","id":1,"result":{"status":"ok"}}`,
			want: &Response{
				Jsonrpc: "2.0",
				Id:      json.Number("1"),
				Result:  json.RawMessage(`{"status":"ok"}`),
			},
		},
		{
			name:  "error response with null id",
			input: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`,
			want: &Response{
				Jsonrpc: "2.0",
				Error:   &Error{Code: ParseError, Message: "Parse error"},
			},
		},
		{
			name:      "missing jsonrpc version",
			input:     `{"id":1,"result":{"status":"ok"}}`,
			wantError: true,
		},
		{
			name:      "missing id",
			input:     `{"jsonrpc":"2.0","result":{"status":"ok"}}`,
			wantError: true,
		},
		{
			name:      "missing result",
			input:     `{"jsonrpc":"2.0","id":1}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Response
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			if !assert.NoError(t, err) {
				return
			}
			assert.Equal(t, tt.want.Jsonrpc, got.Jsonrpc)
			if !reflect.DeepEqual(got.Id, tt.want.Id) {
				t.Errorf("Id: got %v (%T), want %v (%T)", got.Id, got.Id, tt.want.Id, tt.want.Id)
			}
			assert.Equal(t, string(tt.want.Result), string(got.Result))
			assert.Equal(t, tt.want.Error, got.Error)
		})
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		response *Response
		expected string
	}{
		{
			name:     "success",
			response: NewResponse(2, []byte(`{"status":"ok"}`)),
			expected: `{"jsonrpc":"2.0","id":2,"result":{"status":"ok"}}`,
		},
		{
			name:     "failure",
			response: NewErrorResponse(3, NewInvalidRequest("Invalid Request", "Details here")),
			expected: `{"error":{"code":-32600,"data":"Details here","message":"Invalid Request"},"id":3,"jsonrpc":"2.0"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.response)
			assert.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(got))
		})
	}
}
