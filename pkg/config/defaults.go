package config

import "time"

// Default values for configuration fields.
const (
	// Violations defaults
	DefaultViolationsBackend   = "memory"
	DefaultSQLitePath          = "data/violations.db"
	DefaultSQLiteMaxOpenConns  = 10
	DefaultSQLiteBusyTimeout   = 5 * time.Second
	DefaultRecorderBuffer      = 1000
	DefaultRecorderMaxValueLen = 500
	DefaultRetentionDays       = 90
	DefaultRetentionMaxRecords = int64(0)
	DefaultRetentionSchedule   = "0 3 * * *"

	// Metrics defaults
	DefaultMetricsNamespace     = "callisto"
	DefaultMetricsSubsystem     = "contract"
	DefaultMetricsMaxFuncLabels = 1000

	// Logging defaults
	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"
)

// DefaultReturnExempt is the default list of return-exempt base names.
func DefaultReturnExempt() []string {
	return []string{"Init"}
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Enforcement defaults
	if cfg.Enforcement.ReturnExempt == nil {
		cfg.Enforcement.ReturnExempt = DefaultReturnExempt()
	}

	// Violations defaults
	if cfg.Violations.Backend == "" {
		cfg.Violations.Backend = DefaultViolationsBackend
	}
	if cfg.Violations.SQLite.Path == "" {
		cfg.Violations.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Violations.SQLite.MaxOpenConns == 0 {
		cfg.Violations.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Violations.SQLite.BusyTimeout == 0 {
		cfg.Violations.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Violations.Recorder.Buffer == 0 {
		cfg.Violations.Recorder.Buffer = DefaultRecorderBuffer
	}
	if cfg.Violations.Recorder.MaxValueLen == 0 {
		cfg.Violations.Recorder.MaxValueLen = DefaultRecorderMaxValueLen
	}
	if cfg.Violations.Retention.Days == 0 {
		cfg.Violations.Retention.Days = DefaultRetentionDays
	}
	if cfg.Violations.Retention.Schedule == "" {
		cfg.Violations.Retention.Schedule = DefaultRetentionSchedule
	}

	// Metrics defaults
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if cfg.Metrics.MaxFuncLabels == 0 {
		cfg.Metrics.MaxFuncLabels = DefaultMetricsMaxFuncLabels
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLoggingFormat
	}
}
