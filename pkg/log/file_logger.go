package log

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// Ext is the file extension of exchange logs.
const Ext = ".alog"

// FileLogger appends CBOR-encoded events to a file.
// It is safe for concurrent use.
type FileLogger struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	encoder *cbor.Encoder
	closed  bool

	dropBodies bool
	events     int
	exchanges  map[string]struct{}
}

// FileOpt configures a FileLogger.
type FileOpt func(*FileLogger)

// WithoutBodies drops request and response payloads. Size and Truncated
// are kept.
func WithoutBodies() FileOpt {
	return func(l *FileLogger) { l.dropBodies = true }
}

// NewFileLogger opens path for appending, creating it with mode 0644.
// A path without extension gets Ext appended.
func NewFileLogger(path string, opts ...FileOpt) (*FileLogger, error) {
	if filepath.Ext(path) == "" {
		path += Ext
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{
		path:      path,
		file:      f,
		encoder:   NewEncoder(f),
		exchanges: map[string]struct{}{},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Path returns the file the logger writes to.
func (l *FileLogger) Path() string { return l.path }

// Log writes an event. Events logged after Close are dropped.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if l.dropBodies {
		event.Body = nil
	}
	// Capture must never fail the exchange being captured.
	if l.encoder.Encode(event) != nil {
		return
	}
	l.events++
	if event.ExchangeID != "" {
		l.exchanges[event.ExchangeID] = struct{}{}
	}
}

// Written returns the number of events and distinct exchanges written.
func (l *FileLogger) Written() (events, exchanges int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.events, len(l.exchanges)
}

// Close closes the file. Calling it more than once is a no-op.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}

var _ Logger = (*FileLogger)(nil)
