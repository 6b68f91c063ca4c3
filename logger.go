package jsonrpc

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

// Logger defines the interface for logging operations
type Logger interface {
	// Errorf logs an error message with formatting
	Errorf(format string, args ...interface{})
}

// StdLogger is a simple logger that writes to an io.Writer
type StdLogger struct {
	writer io.Writer
	mux    sync.Mutex
}

// Errorf implements Logger.Errorf by writing a formatted error message to the writer
func (l *StdLogger) Errorf(format string, args ...interface{}) {
	if l.writer == nil {
		return
	}
	l.mux.Lock()
	defer l.mux.Unlock()
	fmt.Fprintf(l.writer, format+"\n", args...)
}

// NewStdLogger creates a new StdLogger with the specified writer
// If writer is nil, os.Stderr is used as the default
func NewStdLogger(writer io.Writer) *StdLogger {
	if writer == nil {
		writer = os.Stderr
	}
	return &StdLogger{
		writer: writer,
	}
}

// DefaultLogger is the default logger instance that writes to os.Stderr
var DefaultLogger Logger = NewStdLogger(os.Stderr)

// ZapLogger adapts zap to Logger
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// Errorf logs at error level
func (l *ZapLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// NewZapLogger creates a Logger backed by zap, a nil logger falls back to zap.NewProduction
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		var err error
		if logger, err = zap.NewProduction(); err != nil {
			logger = zap.NewNop()
		}
	}
	return &ZapLogger{sugar: logger.Sugar()}
}

// LogrusLogger adapts logrus to Logger
type LogrusLogger struct {
	entry *logrus.Entry
}

// Errorf logs at error level
func (l *LogrusLogger) Errorf(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// NewLogrusLogger creates a Logger backed by logrus, a nil logger falls back to logrus.StandardLogger
func NewLogrusLogger(logger *logrus.Logger) *LogrusLogger {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogrusLogger{entry: logrus.NewEntry(logger)}
}
