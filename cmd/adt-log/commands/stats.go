package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/adt-protocol/adt-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Exchanges         map[string]*ExchangeStats
	RequestsByMethod  map[string]int
	ResponsesByStatus map[int]int
	Errors            int
	BytesOut          int
	BytesIn           int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// ExchangeStats holds statistics for a single request/response exchange.
type ExchangeStats struct {
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Failed   bool
}

// slowestShown is the number of exchanges listed by duration.
const slowestShown = 5

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Exchanges:         make(map[string]*ExchangeStats),
		RequestsByMethod:  make(map[string]int),
		ResponsesByStatus: make(map[int]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	printStats(w, stats)
	return nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	switch event.Direction {
	case log.DirectionOut:
		s.BytesOut += event.Size
	case log.DirectionIn:
		s.BytesIn += event.Size
	}

	xch, ok := s.Exchanges[event.ExchangeID]
	if !ok {
		xch = &ExchangeStats{}
		s.Exchanges[event.ExchangeID] = xch
	}
	if xch.Method == "" {
		xch.Method, xch.URL = event.Method, event.URL
	}

	switch event.Category {
	case log.CategoryRequest:
		s.RequestsByMethod[event.Method]++
	case log.CategoryResponse:
		s.ResponsesByStatus[event.Status]++
		xch.Status = event.Status
		xch.Duration = event.Duration
	}
	if event.IsFailure() {
		xch.Failed = true
	}
	if event.Error != nil {
		s.Errors++
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== ADT Exchange Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Bytes Sent:     %d\n", stats.BytesOut)
	fmt.Fprintf(w, "Bytes Received: %d\n", stats.BytesIn)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerHTTP, log.LayerXML} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryRequest, log.CategoryResponse, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Requests by Method:")
	methods := make([]string, 0, len(stats.RequestsByMethod))
	for m := range stats.RequestsByMethod {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	for _, m := range methods {
		fmt.Fprintf(w, "  %-12s %d\n", m+":", stats.RequestsByMethod[m])
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Responses by Status:")
	codes := make([]int, 0, len(stats.ResponsesByStatus))
	for c := range stats.ResponsesByStatus {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	for _, c := range codes {
		fmt.Fprintf(w, "  %-12s %d\n", fmt.Sprintf("%d:", c), stats.ResponsesByStatus[c])
	}
	fmt.Fprintln(w)

	failed := 0
	xchs := make([]*ExchangeStats, 0, len(stats.Exchanges))
	for _, x := range stats.Exchanges {
		if x.Failed {
			failed++
		}
		xchs = append(xchs, x)
	}
	fmt.Fprintf(w, "Exchanges: %d (%d failed)\n", len(stats.Exchanges), failed)

	sort.Slice(xchs, func(i, j int) bool {
		if xchs[i].Duration != xchs[j].Duration {
			return xchs[i].Duration > xchs[j].Duration
		}
		return xchs[i].URL < xchs[j].URL
	})
	if len(xchs) > slowestShown {
		xchs = xchs[:slowestShown]
	}
	if len(xchs) > 0 && xchs[0].Duration > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Slowest Exchanges:")
		for _, x := range xchs {
			if x.Duration == 0 {
				break
			}
			fmt.Fprintf(w, "  %10s  %d %s %s\n", formatDuration(x.Duration), x.Status, x.Method, x.URL)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
