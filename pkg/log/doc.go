// Package log captures ADT protocol exchanges.
//
// It is separate from operational logging (slog). Every HTTP request the
// client sends and every response it receives is recorded as an Event so
// a session can be replayed and analysed after the fact.
//
// # Basic Usage
//
//	// Development: exchanges on the console
//	c, _ := client.New(url, client.WithProtocolLogger(log.NewSlogAdapter(slog.Default())))
//
//	// Capture to a file for adt-log
//	fl, _ := log.NewFileLogger("session.alog")
//	defer fl.Close()
//
//	// Both
//	lg := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Layers
//
// Events are recorded at two layers:
//   - HTTP: the request line, status and raw body
//   - XML: decode failures of a response body
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys,
// conventionally with the .alog extension. The adt-log tool views,
// filters and exports them.
package log
