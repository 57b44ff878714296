// Package log provides an slog.Handler that batches records through a
// channel into a daemon which persists them to a side SQLite database.
// Application code logs through the standard slog facade and never touches
// the storage path.
package log

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tidings-app/tidings/config"
)

// BatchHandler is a lightweight slog.Handler that sends records to a channel for batched processing.
type BatchHandler struct {
	configProvider *config.Provider   // For dynamic log levels
	recordChan     chan<- slog.Record // Write-end of the channel, provided by Daemon
	daemonCtx      context.Context    // Context from daemon for shutdown detection
	attrs          []slog.Attr
}

// NewBatchHandler creates a new BatchHandler.
// recordChan is the write-end of a buffered channel where slog.Records will
// be sent; daemonCtx detects daemon shutdown. Panics on nil parameters.
func NewBatchHandler(configProvider *config.Provider, recordChan chan<- slog.Record, daemonCtx context.Context) *BatchHandler {
	if configProvider == nil {
		panic("batchhandler: configProvider cannot be nil")
	}
	if recordChan == nil {
		panic("batchhandler: recordChan cannot be nil")
	}
	if daemonCtx == nil {
		panic("batchhandler: daemonCtx cannot be nil")
	}

	return &BatchHandler{
		configProvider: configProvider,
		recordChan:     recordChan,
		daemonCtx:      daemonCtx,
		attrs:          []slog.Attr{},
	}
}

// Enabled implements the slog.Handler interface.
// It consults the config provider to get the current logging level.
func (h *BatchHandler) Enabled(_ context.Context, level slog.Level) bool {
	conf := h.configProvider.Get()
	return level >= conf.Log.Batch.Level.Level
}

// Handle implements the slog.Handler interface. The send is non-blocking: a
// full channel or a shutting-down daemon drops the record with an error
// rather than stalling the request path.
func (h *BatchHandler) Handle(_ context.Context, r slog.Record) error {
	// Check shutdown first since select case order is not sequential
	if h.daemonCtx.Err() != nil {
		return fmt.Errorf("daemon shutting down, dropping log record")
	}

	if len(h.attrs) > 0 {
		r.AddAttrs(h.attrs...)
	}

	select {
	case h.recordChan <- r:
		return nil
	default:
		return fmt.Errorf("log channel full, dropping record")
	}
}

func (h *BatchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)

	return &BatchHandler{
		configProvider: h.configProvider,
		recordChan:     h.recordChan,
		daemonCtx:      h.daemonCtx,
		attrs:          newAttrs,
	}
}

// WithGroup implements the slog.Handler interface. Groups are flattened.
func (h *BatchHandler) WithGroup(name string) slog.Handler {
	return &BatchHandler{
		configProvider: h.configProvider,
		recordChan:     h.recordChan,
		daemonCtx:      h.daemonCtx,
		attrs:          h.attrs,
	}
}
