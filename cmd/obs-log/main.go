// Command obs-log views and analyzes OBS control channel capture files.
//
// Capture files are written by obs-gateway and obs-subtitles when run
// with the -protocol-log flag.
//
// Usage:
//
//	obs-log <command> [flags] <file.olog>
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
//	# View all events
//	obs-log view gateway.olog
//
//	# Follow a single request through the capture
//	obs-log view -request-id req-42 gateway.olog
//
//	# View only frames received from OBS
//	obs-log view -layer wire -direction in gateway.olog
//
//	# Export to CSV
//	obs-log export -format csv -o gateway.csv gateway.olog
//
//	# Keep only state changes
//	obs-log filter -category state -o states.olog gateway.olog
//
//	# Show statistics
//	obs-log stats gateway.olog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/miqbot/obs-subtitles/cmd/obs-log/commands"
)

const usage = `obs-log - OBS Control Channel Log Analyzer

Usage:
  obs-log <command> [flags] <file.olog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "obs-log <command> -help" for more information about a command.
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "view":
		return runView(args)
	case "export":
		return runExport(args)
	case "filter":
		return runFilter(args)
	case "stats":
		return runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		return 1
	}
}

// newFlagSet creates a flag set whose usage names the command.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `obs-log %s - %s

Usage:
  obs-log %s [flags] <file.olog>

Flags:
`, name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// filterFlags registers the selection flags shared by view, export and
// filter.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.RequestID, "request-id", "", "Filter by request ID (req-N)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, wire, session)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	return opts
}

// logPath returns the single positional argument, reporting its absence.
func logPath(fs *flag.FlagSet) (string, bool) {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		return "", false
	}
	return fs.Arg(0), true
}

func runView(args []string) int {
	fs := newFlagSet("view", "View log file in human-readable format")
	opts := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, ok := logPath(fs)
	if !ok {
		return 1
	}

	if err := commands.RunView(path, *opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runExport(args []string) int {
	fs := newFlagSet("export", "Export log file to JSON or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	opts := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, ok := logPath(fs)
	if !ok {
		return 1
	}

	if err := commands.RunExport(path, *format, *output, *opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runFilter(args []string) int {
	fs := newFlagSet("filter", "Filter log file and write to new file")
	output := fs.String("o", "", "Output file (required)")
	opts := filterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, ok := logPath(fs)
	if !ok {
		return 1
	}
	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		return 1
	}

	if err := commands.RunFilter(path, *output, *opts, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runStats(args []string) int {
	fs := newFlagSet("stats", "Show statistics about the log file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	path, ok := logPath(fs)
	if !ok {
		return 1
	}

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
