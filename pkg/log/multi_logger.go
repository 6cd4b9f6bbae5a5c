package log

// MultiLogger fans events out to several loggers, typically a SlogAdapter
// and a FileLogger.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger returns a MultiLogger. Nil loggers are skipped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		if l != nil {
			m.loggers = append(m.loggers, l)
		}
	}
	return m
}

// Log sends the event to every logger.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}

// Route returns a logger passing only the events matching f to l.
func Route(l Logger, f Filter) Logger {
	return &routedLogger{next: l, filter: f}
}

type routedLogger struct {
	next   Logger
	filter Filter
}

func (r *routedLogger) Log(event Event) {
	if r.filter.Matches(event) {
		r.next.Log(event)
	}
}

var (
	_ Logger = (*MultiLogger)(nil)
	_ Logger = (*routedLogger)(nil)
)
