package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tidings-app/tidings/config"
	"github.com/tidings-app/tidings/db"
)

// Daemon consumes slog.Records from a channel and writes them to the log
// database in batches. It owns the channel and the database handle.
type Daemon struct {
	name string
	// BatchHandler sends to this channel via the write-end provided by Chan().
	recordChan     chan slog.Record
	db             db.DbLog
	opLogger       *slog.Logger
	configProvider *config.Provider

	ctx          context.Context
	cancel       context.CancelFunc
	shutdownDone chan struct{}
}

// NewDaemon creates a new log Daemon. It creates the record channel sized per
// config and takes ownership of the given log store.
func NewDaemon(configProvider *config.Provider, opLogger *slog.Logger, store db.DbLog) (*Daemon, error) {
	if store == nil {
		return nil, fmt.Errorf("logger daemon: log store cannot be nil")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cfg := configProvider.Get()

	daemon := &Daemon{
		name:           "LoggerDaemon",
		recordChan:     make(chan slog.Record, cfg.Log.Batch.ChanSize),
		db:             store,
		opLogger:       opLogger.With("daemon_component", "Daemon"),
		configProvider: configProvider,
		ctx:            ctx,
		cancel:         cancel,
		shutdownDone:   make(chan struct{}),
	}
	return daemon, nil
}

// Chan returns the write-end of the channel and the daemon's context.
// The context can be used to check if the daemon is shutting down.
func (ld *Daemon) Chan() (chan<- slog.Record, context.Context) {
	return ld.recordChan, ld.ctx
}

// Name returns the constant name of this daemon type.
func (ld *Daemon) Name() string {
	return ld.name
}

// Start verifies the log store is reachable and begins the daemon's log
// processing goroutine.
func (ld *Daemon) Start() error {
	if err := ld.db.Ping("logs"); err != nil {
		return fmt.Errorf("logger daemon: log store not ready: %w", err)
	}
	ld.opLogger.Info("Starting Daemon's processing goroutine")
	go ld.processLogs()
	return nil
}

// Stop gracefully shuts down the daemon, waiting for the processing
// goroutine to drain and close within the given context.
func (ld *Daemon) Stop(ctx context.Context) error {
	ld.opLogger.Info("Stopping Daemon")
	ld.cancel()

	select {
	case <-ld.shutdownDone:
		ld.opLogger.Info("Daemon processing goroutine confirmed shutdown.")
	case <-ctx.Done():
		ld.opLogger.Error("Daemon shutdown timed out waiting for processing goroutine", "error", ctx.Err())
		return ctx.Err()
	}

	ld.opLogger.Info("Daemon stopped gracefully.")
	return nil
}

// prepareRecordForDB converts an slog.Record into a db.Log entry.
// Attrs are flattened into a JSON object; value kinds that do not map to
// JSON directly fall back to their string form.
func (ld *Daemon) prepareRecordForDB(record slog.Record) (db.Log, error) {
	attrs := make(map[string]any, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Resolve().Any()
		return true
	})

	jsonDataBytes, err := json.Marshal(attrs)
	if err != nil {
		// Retry with everything stringified. Marshal only fails on attr
		// values like channels or funcs.
		safe := make(map[string]any, len(attrs))
		for k, v := range attrs {
			safe[k] = fmt.Sprintf("%v", v)
		}
		jsonDataBytes, err = json.Marshal(safe)
		if err != nil {
			return db.Log{}, fmt.Errorf("failed to marshal log attrs: %w", err)
		}
	}

	return db.Log{
		Level:    int64(record.Level.Level()),
		Message:  record.Message,
		JsonData: string(jsonDataBytes),
		Created:  record.Time.UTC().Format(time.RFC3339Nano),
	}, nil
}

// processLogs is the internal goroutine that reads from the channel,
// prepares, and writes to the DB.
func (ld *Daemon) processLogs() {
	defer close(ld.shutdownDone)

	cfg := ld.configProvider.Get()
	ticker := time.NewTicker(cfg.Log.Batch.FlushInterval.Duration)
	defer ticker.Stop()

	batch := make([]db.Log, 0, cfg.Log.Batch.FlushSize)

	flushBatch := func(reason string) {
		if len(batch) == 0 {
			return
		}
		if err := ld.db.InsertBatch(batch); err != nil {
			ld.opLogger.Error("Failed to write log batch to DB", "error", err, "batch_size", len(batch), "reason", reason)
		}
		batch = batch[:0]
	}

	for {
		select {
		case record, ok := <-ld.recordChan:
			if !ok {
				flushBatch("channel_closed_by_owner")
				return
			}

			dbEntry, err := ld.prepareRecordForDB(record)
			if err != nil {
				ld.opLogger.Error("Failed to prepare record for DB, skipping",
					"error", err, "record_time", record.Time, "record_msg", record.Message)
				continue
			}

			batch = append(batch, dbEntry)
			if len(batch) >= cfg.Log.Batch.FlushSize {
				flushBatch("db_batch_full")
			}

		case <-ticker.C:
			flushBatch("ticker_flush")

		case <-ld.ctx.Done():
			ld.opLogger.Info("Shutdown signal received, draining remaining logs from channel.")
		drainLoop:
			for {
				select {
				case record, ok := <-ld.recordChan:
					if !ok {
						break drainLoop
					}
					dbEntry, err := ld.prepareRecordForDB(record)
					if err != nil {
						ld.opLogger.Error("Failed to prepare record during drain, skipping",
							"error", err, "record_time", record.Time, "record_msg", record.Message)
						continue
					}
					batch = append(batch, dbEntry)
					if len(batch) >= cfg.Log.Batch.FlushSize {
						flushBatch("shutdown_drain_db_batch_full")
					}
				default:
					break drainLoop
				}
			}

			flushBatch("shutdown_final_flush")

			if err := ld.db.Close(); err != nil {
				ld.opLogger.Error("Failed to close log database", "error", err)
			}
			return
		}
	}
}
