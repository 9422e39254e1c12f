// Package log provides protocol capture for the network layer.
//
// This package defines the Logger interface and Event types for recording
// every MAC primitive the node issues or receives, every connection state
// change and every absorbed error. It is separate from operational logging
// (slog): protocol capture is a complete machine-readable trace for debugging
// join and relay behavior.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	cfg.ProtocolLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to a rotated binary file
//	cfg.ProtocolLogger = log.NewRotatingFileLogger("/var/log/msn/node.mlog", log.RotationConfig{MaxSizeMB: 10})
//
//	// Both: use MultiLogger
//	cfg.ProtocolLogger = log.NewMultiLogger(console, file)
//
// # Event Types
//
// Events are captured at three layers:
//   - MLME: management requests, confirms and indications (PrimitiveEvent)
//   - MCPS: data requests, confirms and indications (PrimitiveEvent)
//   - NWK: connection state changes (StateChangeEvent) and errors
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with the .mlog extension.
// The msn-log CLI tool provides viewing, statistics and export.
package log
