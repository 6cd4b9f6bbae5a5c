package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes exchange events to an slog.Logger at debug level,
// failures at warn level. Bodies are not included; use a FileLogger to
// keep them.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter returns an adapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("exchange_id", event.ExchangeID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Method != "" {
		attrs = append(attrs, slog.String("method", event.Method))
	}
	if event.URL != "" {
		attrs = append(attrs, slog.String("url", event.URL))
	}
	if event.Status != 0 {
		attrs = append(attrs, slog.Int("status", event.Status))
	}
	if event.ContentType != "" {
		attrs = append(attrs, slog.String("content_type", event.ContentType))
	}
	if event.Size > 0 {
		attrs = append(attrs,
			slog.Int("size", event.Size),
			slog.Bool("truncated", event.Truncated),
		)
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}
	if event.Error != nil {
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
		)
		if event.Error.Type != "" {
			attrs = append(attrs, slog.String("error_type", event.Error.Type))
		}
	}

	level := slog.LevelDebug
	if event.IsFailure() {
		level = slog.LevelWarn
	}
	a.logger.LogAttrs(context.Background(), level, "adt", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
