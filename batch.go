package jsonrpc

import (
	"encoding/json"
	"errors"
)

// BatchRequest represents a JSON-RPC 2.0 batch request, each element is decoded into a Call separately
type BatchRequest []json.RawMessage

// BatchResponse represents a JSON-RPC 2.0 batch response
type BatchResponse []*Response

// UnmarshalJSON is a custom JSON unmarshaler for the BatchRequest type
func (b *BatchRequest) UnmarshalJSON(data []byte) error {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return err
	}
	if len(elements) == 0 {
		return errors.New("invalid batch request: empty array")
	}
	*b = elements
	return nil
}

// Calls decodes batch elements into calls, an element that is not a valid call becomes an invalid call
func (b BatchRequest) Calls() []*Call {
	result := make([]*Call, len(b))
	for i, element := range b {
		call, err := ParseCall(element)
		if err != nil {
			call = NewInvalidCall(element)
		}
		result[i] = call
	}
	return result
}

// MarshalJSON is a custom JSON marshaler for BatchResponse
func (b BatchResponse) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal([]*Response(b))
}
