package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeLog(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return path
}

func readAll(t *testing.T, path string, f Filter) []Event {
	t.Helper()
	r, err := NewFilteredReader(path, f)
	if err != nil {
		t.Fatalf("NewFilteredReader: %v", err)
	}
	defer r.Close()

	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		out = append(out, e)
	}
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, ExchangeID: "a", Direction: DirectionOut, Category: CategoryRequest, Method: "GET", URL: "/sap/bc/adt/programs/programs/zhello"},
		{Timestamp: base.Add(time.Second), ExchangeID: "a", Direction: DirectionIn, Category: CategoryResponse, Method: "GET", URL: "/sap/bc/adt/programs/programs/zhello", Status: 200},
		{Timestamp: base.Add(2 * time.Second), ExchangeID: "b", Direction: DirectionOut, Category: CategoryRequest, Method: "POST", URL: "/sap/bc/adt/activation"},
		{Timestamp: base.Add(3 * time.Second), ExchangeID: "b", Direction: DirectionIn, Category: CategoryResponse, Method: "POST", URL: "/sap/bc/adt/activation", Status: 500},
		{Timestamp: base.Add(4 * time.Second), ExchangeID: "b", Direction: DirectionIn, Layer: LayerXML, Category: CategoryError, Error: &ErrorEventData{Layer: LayerXML, Message: "bad body"}},
	}
}

func TestFileLoggerAppends(t *testing.T) {
	base := time.Now()
	path := writeLog(t, sampleEvents(base)[:2])

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	logger.Log(sampleEvents(base)[2])
	logger.Close()

	if got := readAll(t, path, Filter{}); len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	logger.Log(Event{ExchangeID: "late"})

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() != 0 {
		t.Errorf("event written after Close: size %d", info.Size())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				logger.Log(Event{ExchangeID: string(rune('a' + i)), Method: "GET"})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	if got := readAll(t, path, Filter{}); len(got) != 200 {
		t.Errorf("got %d events, want 200", len(got))
	}
}

func TestReaderEmptyAndTruncated(t *testing.T) {
	empty := writeLog(t, nil)
	if got := readAll(t, empty, Filter{}); len(got) != 0 {
		t.Errorf("empty file: got %d events", len(got))
	}

	path := writeLog(t, sampleEvents(time.Now())[:1])
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0o644); err != nil {
		t.Fatal(err)
	}
	r, err := NewReader(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := r.Next(); err == nil || errors.Is(err, io.EOF) {
		t.Errorf("truncated event: got %v, want decode error", err)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	path := writeLog(t, sampleEvents(base))

	in := DirectionIn
	xml := LayerXML
	req := CategoryRequest
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 5},
		{"exchange", Filter{ExchangeID: "b"}, 3},
		{"direction", Filter{Direction: &in}, 3},
		{"layer", Filter{Layer: &xml}, 1},
		{"category", Filter{Category: &req}, 2},
		{"method", Filter{Method: "post"}, 2},
		{"url", Filter{URLContains: "programs"}, 2},
		{"status", Filter{MinStatus: 400}, 1},
		{"failures", Filter{FailuresOnly: true}, 2},
		{"time range", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"combined", Filter{ExchangeID: "a", Direction: &in}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := readAll(t, path, tt.filter); len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestFileLoggerDefaultExt(t *testing.T) {
	base := filepath.Join(t.TempDir(), "session")
	logger, err := NewFileLogger(base)
	if err != nil {
		t.Fatal(err)
	}
	defer logger.Close()

	if logger.Path() != base+Ext {
		t.Errorf("path %q, want %q", logger.Path(), base+Ext)
	}
	if _, err := os.Stat(base + Ext); err != nil {
		t.Error(err)
	}

	other := filepath.Join(t.TempDir(), "trace.cbor")
	l2, err := NewFileLogger(other)
	if err != nil {
		t.Fatal(err)
	}
	defer l2.Close()
	if l2.Path() != other {
		t.Errorf("path %q, want %q", l2.Path(), other)
	}
}

func TestFileLoggerWithoutBodies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nobody.alog")
	logger, err := NewFileLogger(path, WithoutBodies())
	if err != nil {
		t.Fatal(err)
	}
	e := Event{ExchangeID: "a", Direction: DirectionIn, Category: CategoryResponse, Status: 200}
	e.Capture([]byte("<program:abapProgram/>"))
	logger.Log(e)
	logger.Close()

	got := readAll(t, path, Filter{})
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
	if got[0].Body != nil || got[0].Size != 22 {
		t.Errorf("got body %q size %d, want no body and size 22", got[0].Body, got[0].Size)
	}
}

func TestFileLoggerWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "count.alog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range sampleEvents(time.Now()) {
		logger.Log(e)
	}
	logger.Close()
	logger.Log(Event{ExchangeID: "late"})

	events, exchanges := logger.Written()
	if events != 5 || exchanges != 2 {
		t.Errorf("got %d events in %d exchanges, want 5 in 2", events, exchanges)
	}
}
