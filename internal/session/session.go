// Package session wires the control channel and the subtitle scheduler
// together for the commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/miqbot/obs-subtitles/pkg/config"
	"github.com/miqbot/obs-subtitles/pkg/control"
	"github.com/miqbot/obs-subtitles/pkg/log"
	"github.com/miqbot/obs-subtitles/pkg/subtitle"
	"github.com/miqbot/obs-subtitles/pkg/transport"
)

// Options configures Open.
type Options struct {
	// Logger is the operational logger. If nil, logging is disabled.
	Logger *slog.Logger

	// ProtocolLogPath, if set, captures the control channel to a CBOR
	// log file.
	ProtocolLogPath string

	// Dialer overrides the websocket dialer.
	Dialer transport.Dialer
}

// Session is a connected control channel with its scheduler.
type Session struct {
	Client    *control.Client
	Scheduler *subtitle.Scheduler

	logger     *slog.Logger
	fileLogger *log.FileLogger
}

// NewLogger creates a text logger writing to w at the named level
// (debug, info, warn, error).
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

// Open connects to OBS and returns a ready session.
func Open(ctx context.Context, cfg config.Config, opts Options) (*Session, error) {
	s := &Session{logger: opts.Logger}

	var loggers []log.Logger
	if opts.ProtocolLogPath != "" {
		fl, err := log.NewFileLogger(opts.ProtocolLogPath)
		if err != nil {
			return nil, fmt.Errorf("creating protocol log: %w", err)
		}
		s.fileLogger = fl
		loggers = append(loggers, fl)
	}
	if opts.Logger != nil && opts.Logger.Enabled(ctx, slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(opts.Logger))
	}

	cc := cfg.Control()
	cc.Logger = opts.Logger
	cc.Dialer = opts.Dialer
	sc := cfg.Scheduler()
	sc.Logger = opts.Logger
	// Only set when non-empty to avoid a typed-nil interface.
	if len(loggers) > 0 {
		protocol := log.NewMultiLogger(loggers...)
		cc.ProtocolLogger = protocol
		sc.ProtocolLogger = protocol
	}

	s.Client = control.New(cc)
	if err := s.Client.Connect(ctx); err != nil {
		s.closeProtocolLog()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.OBSURL, err)
	}
	s.Scheduler = subtitle.New(s.Client, sc)

	if s.logger != nil {
		s.logger.Info("connected to OBS",
			"url", cfg.OBSURL,
			"obsWebSocketVersion", s.Client.ServerVersion(),
			"input", sc.InputName)
	}
	return s, nil
}

// Close cancels any pending clear, then closes the channel and the
// protocol log.
func (s *Session) Close() error {
	errs := []error{
		s.Scheduler.Close(),
		s.Client.Close(),
		s.closeProtocolLog(),
	}
	return errors.Join(errs...)
}

func (s *Session) closeProtocolLog() error {
	if s.fileLogger == nil {
		return nil
	}
	err := s.fileLogger.Close()
	if dropped := s.fileLogger.Dropped(); dropped > 0 && s.logger != nil {
		s.logger.Warn("protocol log dropped events", "count", dropped)
	}
	return err
}
