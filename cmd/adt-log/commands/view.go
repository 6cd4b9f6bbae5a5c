// Package commands implements the adt-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/adt-protocol/adt-go/pkg/log"
)

// ViewOptions controls the view command.
type ViewOptions struct {
	Filter log.Filter

	// Bodies prints captured request and response bodies.
	Bodies bool
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event, bodies bool) {
	// Header line: timestamp [xch:id] DIRECTION LAYER CATEGORY
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	fmt.Fprintf(w, "%s [xch:%s] %-3s %s %s\n", ts, shortenID(event.ExchangeID),
		event.Direction, event.Layer, event.Category)

	if event.Method != "" || event.URL != "" {
		fmt.Fprintf(w, "  %s %s\n", event.Method, event.URL)
	}
	if event.Status != 0 {
		fmt.Fprintf(w, "  Status: %d\n", event.Status)
	}
	if event.ContentType != "" {
		fmt.Fprintf(w, "  Content-Type: %s\n", event.ContentType)
	}
	if event.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes", event.Size)
		if event.Truncated {
			fmt.Fprint(w, " (truncated)")
		}
		fmt.Fprintln(w)
	}
	if event.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(event.Duration))
	}
	if event.Error != nil {
		formatErrorDetails(w, event.Error)
	}
	if bodies && len(event.Body) > 0 {
		formatBody(w, event.Body)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenID returns the first 8 characters of an exchange ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Error Layer: %s\n", err.Layer)
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Type != "" {
		fmt.Fprintf(w, "  Exception: %s\n", err.Type)
	}
	if err.Namespace != "" {
		fmt.Fprintf(w, "  Namespace: %s\n", err.Namespace)
	}
}

// formatBody writes a text body indented, or its size when it is binary.
func formatBody(w io.Writer, body []byte) {
	if !utf8.Valid(body) {
		fmt.Fprintf(w, "  Body: <%d bytes binary>\n", len(body))
		return
	}
	fmt.Fprintln(w, "  Body:")
	for _, line := range strings.Split(strings.TrimRight(string(body), "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	if l, ok := log.ParseLayer(strings.ToUpper(s)); ok {
		return l, nil
	}
	return 0, fmt.Errorf("invalid layer: %s (must be http or xml)", s)
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	if d, ok := log.ParseDirection(strings.ToUpper(s)); ok {
		return d, nil
	}
	return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	if c, ok := log.ParseCategory(strings.ToUpper(s)); ok {
		return c, nil
	}
	return 0, fmt.Errorf("invalid category: %s (must be request, response, or error)", s)
}

// RunView executes the view command.
func RunView(path string, opts ViewOptions, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event, opts.Bodies)
	}

	return nil
}
