package session

const (
	// KindHeader locates the session id in a request header
	KindHeader = "header"
	// KindQuery locates the session id in a query parameter
	KindQuery = "query"
)

// Location represents the location of the session id
type Location struct {
	Name string
	Kind string
}

// NewLocation creates a new session id location
func NewLocation(name, kind string) *Location {
	return &Location{
		Name: name,
		Kind: kind,
	}
}

// NewHeaderLocation creates a new session id location for header
func NewHeaderLocation(name string) *Location {
	return NewLocation(name, KindHeader)
}

// NewQueryLocation creates a new session id location for query
func NewQueryLocation(name string) *Location {
	return NewLocation(name, KindQuery)
}
