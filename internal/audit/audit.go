// Package audit writes a newline-delimited JSON record of every pet fetch
// and MCP tool invocation.
package audit

import (
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"
)

// ErrNilWriter is returned by Logger.Log when the logger was constructed
// with a nil writer.
var ErrNilWriter = errors.New("audit logger: writer is nil")

// Entry captures a single operation for the audit log.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Operation string         `json:"operation"`
	RequestID string         `json:"request_id,omitempty"`
	Params    map[string]any `json:"params"`
	Result    string         `json:"result"`
	Duration  time.Duration  `json:"duration_ns"`
}

// Logger writes Entry records as JSON lines to an io.Writer. It is safe for
// concurrent use.
type Logger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogger returns a Logger that writes to w. If w is nil the returned
// logger is also nil; callers must check for nil before use.
func NewLogger(w io.Writer) *Logger {
	if w == nil {
		return nil
	}
	return &Logger{w: w}
}

// Log serialises entry as a single JSON line and writes it to the underlying
// writer.
func (l *Logger) Log(entry Entry) error {
	if l == nil || l.w == nil {
		return ErrNilWriter
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	l.mu.Lock()
	_, err = l.w.Write(data)
	l.mu.Unlock()

	return err
}

// Record logs an operation that began at start, silently ignoring a nil
// logger and write failures.
func (l *Logger) Record(operation, requestID string, params map[string]any, result string, start time.Time) {
	if l == nil {
		return
	}
	_ = l.Log(Entry{
		Timestamp: start,
		Operation: operation,
		RequestID: requestID,
		Params:    params,
		Result:    result,
		Duration:  time.Since(start),
	})
}
