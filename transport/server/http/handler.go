package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/viant/jsonrpc-tracing"
	"github.com/viant/jsonrpc-tracing/transport"
	"github.com/viant/jsonrpc-tracing/transport/server/base"
	"github.com/viant/jsonrpc-tracing/transport/server/http/session"
)

const (
	defaultURI         = "/rpc"
	defaultSessionTTL  = 10 * time.Minute
	defaultMaxSessions = 10000
	SessionHeaderKey   = "Jsonrpc-Session-Id"
	ndjsonMime         = "application/x-ndjson"
)

// ErrSessionNotFound is returned when a request refers to an unknown session
var ErrSessionNotFound = errors.New("session not found")

// Handler implements a JSON-RPC over HTTP endpoint.
// POST (no session id) creates a session and returns its id in the response header.
// POST (with session id) handles a message for the session, the response is returned synchronously.
// GET  (with session id & Accept: application/x-ndjson) streams server notifications until the client disconnects.
// DELETE (with session id) terminates the session.
type Handler struct {
	Options
	base       *base.Handler
	locator    session.Locator
	newHandler transport.NewHandler
	mux        sync.Mutex
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, h.URI) {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodPost:
		h.handlePOST(w, r)
	case http.MethodGet:
		h.handleGET(w, r)
	case http.MethodDelete:
		h.handleDELETE(w, r)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handlePOST(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.locator.Locate(h.SessionLocation, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var aSession *base.Session
	if sessionID == "" {
		aSession = h.createSession(r)
		if err = h.locator.Set(h.SessionLocation, w.Header(), aSession.Id); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	} else if aSession, err = h.session(sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.handleMessage(w, r, aSession)
}

func (h *Handler) handleGET(w http.ResponseWriter, r *http.Request) {
	if !acceptsNDJSON(r.Header) {
		http.Error(w, "unsupported Accept header, expecting "+ndjsonMime, http.StatusNotAcceptable)
		return
	}
	sessionID, err := h.locator.Locate(h.SessionLocation, r)
	if err != nil || sessionID == "" {
		http.Error(w, fmt.Sprintf("missing %s", h.SessionLocation.Name), http.StatusBadRequest)
		return
	}
	aSession, err := h.session(sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writer, err := newFlushWriter(w)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", ndjsonMime)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	writer.Flush()

	aSession.SetWriter(writer)
	<-r.Context().Done()
	aSession.SetWriter(nil)
}

func (h *Handler) handleDELETE(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.locator.Locate(h.SessionLocation, r)
	if err != nil || sessionID == "" {
		http.Error(w, fmt.Sprintf("missing %s", h.SessionLocation.Name), http.StatusBadRequest)
		return
	}
	if _, err = h.session(sessionID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	h.base.Sessions.Delete(sessionID)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) session(id string) (*base.Session, error) {
	aSession, ok := h.base.Sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrSessionNotFound, id)
	}
	return aSession, nil
}

// createSession stores a new session after evicting idle ones
func (h *Handler) createSession(r *http.Request) *base.Session {
	h.mux.Lock()
	defer h.mux.Unlock()
	h.evict(time.Now())
	aSession := base.NewSession(r.Context(), "", nil, h.newHandler, base.WithFramer(base.FrameLine))
	h.base.Sessions.Put(aSession.Id, aSession)
	return aSession
}

// evict removes sessions idle longer than SessionTTL, then the least recently active ones
// until there is room for a new session. Streaming sessions are kept.
func (h *Handler) evict(now time.Time) {
	var candidates []*base.Session
	h.base.Sessions.Range(func(id string, aSession *base.Session) bool {
		if aSession.Streaming() {
			return true
		}
		if h.SessionTTL > 0 && now.Sub(aSession.LastActive()) > h.SessionTTL {
			h.base.Sessions.Delete(id)
			return true
		}
		candidates = append(candidates, aSession)
		return true
	})
	if h.MaxSessions <= 0 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].LastActive().Before(candidates[j].LastActive())
	})
	for _, candidate := range candidates {
		if h.base.Sessions.Len() < h.MaxSessions {
			return
		}
		h.base.Sessions.Delete(candidate.Id)
	}
}

func (h *Handler) handleMessage(w http.ResponseWriter, r *http.Request, aSession *base.Session) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read request body: %v", err), http.StatusBadRequest)
		return
	}
	_ = r.Body.Close()

	buffer := bytes.Buffer{}
	h.base.HandleMessage(r.Context(), aSession, data, &buffer)

	if buffer.Len() == 0 { // notification
		w.WriteHeader(http.StatusAccepted)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buffer.Bytes())
}

// Sessions returns the session store
func (h *Handler) Sessions() base.SessionStore {
	return h.base.Sessions
}

func acceptsNDJSON(header http.Header) bool {
	for _, v := range header.Values("Accept") {
		if strings.Contains(v, ndjsonMime) {
			return true
		}
	}
	return false
}

// New constructs Handler with default settings and provided options.
func New(newHandler transport.NewHandler, opts ...Option) *Handler {
	h := &Handler{
		newHandler: newHandler,
		Options: Options{
			URI:             defaultURI,
			SessionLocation: session.NewHeaderLocation(SessionHeaderKey),
			SessionTTL:      defaultSessionTTL,
			MaxSessions:     defaultMaxSessions,
			logger:          jsonrpc.DefaultLogger,
		},
	}
	for _, o := range opts {
		o(&h.Options)
	}
	h.base = base.NewHandler(base.WithInterceptors(h.interceptors...), base.WithLogger(h.logger))
	return h
}
