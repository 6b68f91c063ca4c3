package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// CallType is an enumeration of the inbound call variants.
type CallType string

const (
	CallTypeMethod       CallType = "method"
	CallTypeNotification CallType = "notification"
	CallTypeInvalid      CallType = "invalid"
)

// Call represents a single inbound JSON-RPC call; exactly one of Request or Notification is set
// for the method and notification variants, an invalid call carries only the raw payload.
type Call struct {
	Type         CallType
	Request      *Request
	Notification *Notification
	Raw          json.RawMessage
}

// Method returns the called method name or an empty string for an invalid or nil call.
func (c *Call) Method() string {
	if c == nil {
		return ""
	}
	switch {
	case c.Type == CallTypeMethod && c.Request != nil:
		return c.Request.Method
	case c.Type == CallTypeNotification && c.Notification != nil:
		return c.Notification.Method
	default:
		return ""
	}
}

// NewMethodCall creates a method call.
func NewMethodCall(request *Request) *Call {
	return &Call{Type: CallTypeMethod, Request: request}
}

// NewNotificationCall creates a notification call.
func NewNotificationCall(notification *Notification) *Call {
	return &Call{Type: CallTypeNotification, Notification: notification}
}

// NewInvalidCall creates an invalid call carrying the raw payload.
func NewInvalidCall(raw []byte) *Call {
	return &Call{Type: CallTypeInvalid, Raw: raw}
}

// ParseCall decodes a single (non batch) message into a call.
// It returns an error only when data is not valid JSON; structurally invalid messages become invalid calls.
func ParseCall(data []byte) (*Call, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON: %s", data)
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return NewInvalidCall(data), nil
	}
	if _, ok := members["id"]; ok {
		request := &Request{}
		if err := json.Unmarshal(data, request); err != nil {
			return NewInvalidCall(data), nil
		}
		return NewMethodCall(request), nil
	}
	notification := &Notification{}
	if err := json.Unmarshal(data, notification); err != nil {
		return NewInvalidCall(data), nil
	}
	return NewNotificationCall(notification), nil
}

// NewRequest creates a request for the method with parameters marshaled as JSON.
func NewRequest(method string, parameters interface{}) (*Request, error) {
	req := &Request{Jsonrpc: Version, Method: method}
	var err error
	req.Params, err = asParameters(method, parameters)
	if err != nil {
		return nil, err
	}
	return req, nil
}

func asParameters(method string, parameters interface{}) (json.RawMessage, error) {
	switch actual := parameters.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(actual), nil
	case []byte:
		return actual, nil
	case json.RawMessage:
		return actual, nil
	default:
		data, err := json.Marshal(actual)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal jsonrpc request parameter: [method:%v, parameters: %+v] %w", method, parameters, err)
		}
		return data, nil
	}
}
