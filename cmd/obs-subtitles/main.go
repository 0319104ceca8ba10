// Command obs-subtitles shows typed lines as subtitles in OBS Studio.
//
// Each line is wrapped, shown in the configured text source and cleared
// after a delay proportional to its length. Typing the next line before
// the delay ends replaces the subtitle immediately.
//
// Usage:
//
//	obs-subtitles [flags]
//
// Flags:
//
//	-config string        Configuration file (default "config.properties")
//	-log-level string     Log level: debug, info, warn, error (default "warn")
//	-protocol-log string  Capture the OBS connection to a CBOR log file
//	-version              Show version information
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/miqbot/obs-subtitles/internal/session"
	"github.com/miqbot/obs-subtitles/pkg/config"
	"github.com/miqbot/obs-subtitles/pkg/version"
)

var (
	configPath  = flag.String("config", "config.properties", "Configuration file")
	logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	protocolLog = flag.String("protocol-log", "", "Capture the OBS connection to a CBOR log file")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("obs-subtitles %s\n", version.String())
		return 0
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".obs-subtitles-history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create readline: %v\n", err)
		return 1
	}
	defer rl.Close()

	// Log through readline so output does not garble the prompt.
	logger, err := session.NewLogger(rl.Stderr(), *logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	cfg, created, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if created {
		fmt.Fprintf(rl.Stdout(), "Created default configuration %s\n", *configPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	sess, err := session.Open(ctx, cfg, session.Options{
		Logger:          logger,
		ProtocolLogPath: *protocolLog,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer sess.Close()

	fmt.Fprintf(rl.Stdout(), "Connected to OBS at %s, showing subtitles in %q.\n", cfg.OBSURL, cfg.InputName)

	console := NewConsole(sess.Scheduler, sess.Client, rl.Stdout())
	if err := console.Run(ctx, rl); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
