package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/callisto/pkg/contract"
	"mercator-hq/callisto/pkg/violations"
)

// Config contains configuration for the violation recorder.
type Config struct {
	// Buffer is the size of the async write channel. When the buffer is
	// full new violations are dropped rather than blocking enforcement.
	// Default: 1000
	Buffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxValueLen is the maximum length of the rendered offending value
	// before truncation.
	// Default: 500
	MaxValueLen int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		Buffer:       1000,
		WriteTimeout: 5 * time.Second,
		MaxValueLen:  500,
	}
}

// Recorder persists contract violations to a storage backend. It implements
// contract.ViolationSink and writes asynchronously: RecordViolation never
// blocks on storage, so a slow backend cannot slow down enforcement.
type Recorder struct {
	storage    violations.Storage
	config     *Config
	recordChan chan *violations.Record
	wg         sync.WaitGroup
	done       chan struct{}
	logger     *slog.Logger

	dropped int64
	mu      sync.Mutex
}

// NewRecorder creates a new violation recorder with the provided storage
// backend and configuration. The recorder starts its background writer
// immediately; call Close to drain and stop it.
func NewRecorder(storage violations.Storage, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		recordChan: make(chan *violations.Record, config.Buffer),
		done:       make(chan struct{}),
		logger:     slog.Default().With("component", "violations.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("violation recorder initialized",
		"buffer", config.Buffer,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// RecordViolation converts a violation observation into a record and
// enqueues it for async writing. It implements contract.ViolationSink.
//
// This method returns immediately. If the recorder is shutting down or the
// buffer is full, the violation is dropped and counted.
func (r *Recorder) RecordViolation(v contract.Violation) {
	record := &violations.Record{
		ID:        uuid.New().String(),
		Time:      v.Time,
		Func:      v.Func,
		Param:     v.Param,
		Check:     string(v.Check),
		Declared:  v.Declared,
		Value:     TruncateString(renderValue(v.Value), r.config.MaxValueLen),
		ValueType: v.ValueType,
		Message:   v.Message,
	}

	select {
	case <-r.done:
		r.countDrop()
		r.logger.Warn("recorder shutting down, dropping violation",
			"record_id", record.ID,
			"func", record.Func,
		)
	case r.recordChan <- record:
		r.logger.Debug("violation enqueued for writing",
			"record_id", record.ID,
			"func", record.Func,
			"param", record.Param,
			"check", record.Check,
		)
	default:
		r.countDrop()
		r.logger.Error("violation channel full, dropping record",
			"record_id", record.ID,
			"func", record.Func,
			"channel_capacity", r.config.Buffer,
		)
	}
}

// Dropped returns the number of violations dropped because the buffer was
// full or the recorder was shutting down.
func (r *Recorder) Dropped() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) countDrop() {
	r.mu.Lock()
	r.dropped++
	r.mu.Unlock()
}

// Close gracefully shuts down the recorder by draining the async channel and
// waiting for all pending writes to complete.
func (r *Recorder) Close() error {
	r.logger.Info("shutting down violation recorder")

	close(r.done)
	r.wg.Wait()

	r.logger.Info("violation recorder shut down complete")
	return nil
}

// worker is the background goroutine that drains the violation channel and
// writes records to storage.
func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			// Drain remaining records from channel before exit
			r.logger.Info("draining violation channel before shutdown",
				"pending_count", len(r.recordChan),
			)

			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					r.logger.Info("violation channel drained")
					return
				}
			}
		}
	}
}

// writeRecord writes a single violation record to storage.
func (r *Recorder) writeRecord(record *violations.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()

	if err := r.storage.Store(ctx, record); err != nil {
		r.logger.Error("failed to store violation record",
			"record_id", record.ID,
			"func", record.Func,
			"error", err,
		)
		return
	}

	duration := time.Since(start)

	r.logger.Debug("violation recorded",
		"record_id", record.ID,
		"func", record.Func,
		"param", record.Param,
		"check", record.Check,
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow violation write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}

// renderValue renders the offending value the way it appears in violation
// messages.
func renderValue(v any) string {
	return fmt.Sprintf("%#v", v)
}

// TruncateString truncates s to at most max bytes, appending "..." when
// truncation happened. Non-positive max disables truncation.
func TruncateString(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
