package session

import (
	"fmt"
	"net/http"
)

// Locator handles the location of session ids in HTTP requests and responses
type Locator struct{}

// Locate retrieves the session id from the specified location in the HTTP request
func (l *Locator) Locate(location *Location, request *http.Request) (string, error) {
	if request == nil {
		return "", fmt.Errorf("request was nil")
	}
	switch location.Kind {
	case KindHeader:
		return request.Header.Get(location.Name), nil
	case KindQuery:
		return request.URL.Query().Get(location.Name), nil
	}
	return "", fmt.Errorf("unsupported session location kind: %s for name: %s", location.Kind, location.Name)
}

// Set exposes the session id to the client; a query located id is still returned as a header named after the parameter
func (l *Locator) Set(location *Location, header http.Header, id string) error {
	if header == nil {
		return fmt.Errorf("header was nil")
	}
	switch location.Kind {
	case KindHeader, KindQuery:
		header.Set(location.Name, id)
	default:
		return fmt.Errorf("unsupported session location kind: %s for name: %s", location.Kind, location.Name)
	}
	return nil
}
