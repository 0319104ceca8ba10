// Package log provides protocol capture for the OBS control channel.
//
// This package defines the Logger interface and Event types for recording
// what happens on the control channel at three layers: raw frames
// (transport), decoded frames (wire), and connection or scheduler state
// changes (session). It is separate from operational logging (slog):
// protocol capture is a complete, machine-readable trace meant for
// debugging desynchronisation and authentication problems after the fact.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a binary file
//	cfg.ProtocolLogger, _ = log.NewFileLogger("/var/log/obs-gateway/channel.olog")
//
//	// Both
//	cfg.ProtocolLogger = log.NewMultiLogger(console, file)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys, using
// the .olog extension. The obs-log tool views and summarises them.
package log
