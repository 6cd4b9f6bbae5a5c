// Command adt-log is a tool for viewing and analyzing ADT exchange logs.
//
// Log files are written by adt when it runs with --protocol-log.
//
// Usage:
//
//	adt-log <command> [flags] <file.alog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View failed exchanges with their bodies
//	adt-log view --failures --bodies session.alog
//
//	# View only outgoing requests
//	adt-log view --direction out session.alog
//
//	# Export to CSV
//	adt-log export --format csv -o session.csv session.alog
//
//	# Keep only activation traffic
//	adt-log filter --url /activation -o activation.alog session.alog
//
//	# Show statistics
//	adt-log stats session.alog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/adt-protocol/adt-go/cmd/adt-log/commands"
)

const usage = `adt-log - ADT Exchange Log Analyzer

Usage:
  adt-log <command> [flags] <file.alog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "adt-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// filterFlags registers the event selection flags shared by view and filter.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.ExchangeID, "exchange-id", "", "Filter by exchange ID")
	fs.StringVar(&opts.Method, "method", "", "Filter by HTTP method")
	fs.StringVar(&opts.URLContains, "url", "", "Filter by URL substring")
	fs.IntVar(&opts.MinStatus, "min-status", 0, "Filter responses by minimum status code")
	fs.BoolVar(&opts.FailuresOnly, "failures", false, "Only failed exchanges (errors and status >= 400)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (http, xml)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (request, response, error)")
	return opts
}

func parse(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func usageFor(fs *flag.FlagSet, text string) {
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, text)
		fs.PrintDefaults()
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	usageFor(fs, `adt-log view - View log file in human-readable format

Usage:
  adt-log view [flags] <file.alog>

Flags:
`)
	opts := filterFlags(fs)
	bodies := fs.Bool("bodies", false, "Print captured bodies")
	path := parse(fs, args)

	filter, err := opts.Build()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, commands.ViewOptions{Filter: filter, Bodies: *bodies}, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	usageFor(fs, `adt-log export - Export log file to JSON or CSV format

Usage:
  adt-log export [flags] <file.alog>

Flags:
`)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := parse(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	usageFor(fs, `adt-log filter - Filter log file and write to new file

Usage:
  adt-log filter [flags] <file.alog>

Flags:
`)
	opts := filterFlags(fs)
	fs.StringVar(&opts.Output, "o", "", "Output file (required)")
	path := parse(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	usageFor(fs, `adt-log stats - Show statistics about the log file

Usage:
  adt-log stats <file.alog>

`)
	path := parse(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
