// Command obs-gateway shows subtitles in OBS Studio on behalf of HTTP
// clients.
//
// It connects to obs-websocket once at startup and serves:
//   - POST /v1/subtitle {"text": "..."} to display a subtitle
//   - GET /healthz to report whether the OBS connection is up
//
// Each subtitle is wrapped to a fixed width, shown in the configured text
// source and cleared after a delay proportional to its length. A newer
// subtitle replaces an older one and cancels its clear.
//
// The gateway does not reconnect. If the OBS connection fails it exits
// non-zero so a supervisor can restart it.
//
// Usage:
//
//	obs-gateway [flags]
//
// Flags:
//
//	-config string        Configuration file (default "config.properties")
//	-listen string        HTTP listen address (overrides listen_addr)
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Capture the OBS connection to a CBOR log file
//	-version              Show version information
//
// Examples:
//
//	# Start with the default config, creating it if missing
//	obs-gateway
//
//	# Listen on all interfaces and capture the OBS traffic
//	obs-gateway -listen :8765 -protocol-log obs.olog
//
//	# Show a subtitle
//	curl -d '{"text":"hello"}' http://127.0.0.1:8765/v1/subtitle
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/miqbot/obs-subtitles/internal/session"
	"github.com/miqbot/obs-subtitles/pkg/config"
	"github.com/miqbot/obs-subtitles/pkg/version"
)

// shutdownTimeout bounds the wait for in-flight HTTP requests.
const shutdownTimeout = 5 * time.Second

var (
	configPath  = flag.String("config", "config.properties", "Configuration file")
	listenAddr  = flag.String("listen", "", "HTTP listen address (overrides listen_addr)")
	logLevel    = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	protocolLog = flag.String("protocol-log", "", "Capture the OBS connection to a CBOR log file")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("obs-gateway %s\n", version.String())
		return 0
	}

	logger, err := session.NewLogger(os.Stderr, *logLevel)
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
		logger.Info("created default configuration", "path", *configPath)
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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

	ctx, fail := context.WithCancelCause(ctx)
	defer fail(nil)

	srv := NewServer(ServerConfig{
		Addr:   cfg.ListenAddr,
		Logger: logger,
		OnFatal: func(err error) {
			fail(fmt.Errorf("OBS connection lost: %w", err))
		},
	}, sess.Scheduler, sess.Client)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.ListenAddr)
		return srv.ListenAndServe()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		err = errors.Join(err, cause)
	}
	if err != nil {
		logger.Error("gateway stopped", "error", err)
		return 1
	}

	logger.Info("shutting down")
	return 0
}
