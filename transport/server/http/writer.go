package http

import (
	"fmt"
	"net/http"
)

// flushWriter flushes every write so notifications reach the client immediately
type flushWriter struct {
	writer  http.ResponseWriter
	flusher http.Flusher
}

func (w *flushWriter) Write(p []byte) (int, error) {
	n, err := w.writer.Write(p)
	if err == nil {
		w.flusher.Flush()
	}
	return n, err
}

// Flush flushes buffered data to the client
func (w *flushWriter) Flush() {
	w.flusher.Flush()
}

func newFlushWriter(rw http.ResponseWriter) (*flushWriter, error) {
	flusher, ok := rw.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported: %T does not support flushing", rw)
	}
	return &flushWriter{writer: rw, flusher: flusher}, nil
}
