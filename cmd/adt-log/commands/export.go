package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/adt-protocol/adt-go/pkg/log"
)

// jsonEvent is the JSONL shape of an event. Bodies are written as text.
type jsonEvent struct {
	Timestamp   string `json:"timestamp"`
	ExchangeID  string `json:"exchange_id"`
	Direction   string `json:"direction"`
	Layer       string `json:"layer"`
	Category    string `json:"category"`
	Method      string `json:"method,omitempty"`
	URL         string `json:"url,omitempty"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size,omitempty"`
	Truncated   bool   `json:"truncated,omitempty"`
	DurationMS  int64  `json:"duration_ms,omitempty"`
	Body        string `json:"body,omitempty"`
	Error       string `json:"error,omitempty"`
	Exception   string `json:"exception,omitempty"`
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func toJSON(event log.Event) jsonEvent {
	je := jsonEvent{
		Timestamp:   event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
		ExchangeID:  event.ExchangeID,
		Direction:   event.Direction.String(),
		Layer:       event.Layer.String(),
		Category:    event.Category.String(),
		Method:      event.Method,
		URL:         event.URL,
		Status:      event.Status,
		ContentType: event.ContentType,
		Size:        event.Size,
		Truncated:   event.Truncated,
		DurationMS:  event.Duration.Milliseconds(),
		Body:        string(event.Body),
	}
	if event.Error != nil {
		je.Error = event.Error.Message
		je.Exception = event.Error.Type
	}
	return je
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(toJSON(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "exchange_id", "direction", "layer", "category", "method", "url", "status", "size", "duration_ms", "error"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		je := toJSON(event)
		status := ""
		if je.Status != 0 {
			status = strconv.Itoa(je.Status)
		}
		row := []string{
			je.Timestamp,
			je.ExchangeID,
			je.Direction,
			je.Layer,
			je.Category,
			je.Method,
			je.URL,
			status,
			strconv.Itoa(je.Size),
			strconv.FormatInt(je.DurationMS, 10),
			je.Error,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
