package config

import "time"

// Config is the root configuration structure for Callisto. It contains the
// configuration sections for enforcement behavior, violation recording,
// metrics, and logging. Embedding applications load it once at startup and
// hand the relevant sections to the components they construct.
type Config struct {
	// Enforcement contains the default enforcement options; Options
	// translates the section into contract options.
	Enforcement EnforcementConfig `yaml:"enforcement"`

	// Violations contains configuration for the violation audit trail,
	// including backend selection and retention settings.
	Violations ViolationsConfig `yaml:"violations"`

	// Metrics contains configuration for Prometheus metrics.
	Metrics MetricsConfig `yaml:"metrics"`

	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// EnforcementConfig contains the default enforcement options. Each field maps
// to a contract option; Options translates the section into option values.
type EnforcementConfig struct {
	// RequireArgs makes construction fail when any parameter lacks a type
	// declaration.
	// Default: false
	RequireArgs bool `yaml:"require_args"`

	// RequireReturn makes construction fail when the return value lacks a
	// type declaration.
	// Default: false
	RequireReturn bool `yaml:"require_return"`

	// IgnoreSelf exempts the first parameter (the receiver) from
	// declaration requirements and validation.
	// Default: false
	IgnoreSelf bool `yaml:"ignore_self"`

	// ReturnExempt lists function base names exempt from RequireReturn
	// when IgnoreSelf is set. Constructor-like callables return the
	// receiver and are conventionally undeclared.
	// Default: ["Init"]
	ReturnExempt []string `yaml:"return_exempt"`
}

// ViolationsConfig contains configuration for the violation audit trail.
type ViolationsConfig struct {
	// Enabled controls whether violations are recorded at all. Recording
	// is opt-in; enforcement itself never requires it.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory" or "sqlite".
	// Default: "memory"
	Backend string `yaml:"backend"`

	// SQLite contains settings for the sqlite backend.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Recorder contains settings for the async recorder.
	Recorder RecorderConfig `yaml:"recorder"`

	// Retention contains settings for pruning old records.
	Retention RetentionConfig `yaml:"retention"`
}

// SQLiteConfig contains settings for the sqlite violation store.
type SQLiteConfig struct {
	// Path is the sqlite database file path.
	// Default: "data/violations.db"
	Path string `yaml:"path"`

	// MaxOpenConns limits the number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// BusyTimeout is how long a connection waits on a locked database
	// before failing.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RecorderConfig contains settings for the async violation recorder.
type RecorderConfig struct {
	// Buffer is the capacity of the recorder's channel. When the buffer is
	// full new violations are dropped rather than blocking enforcement.
	// Default: 1000
	Buffer int `yaml:"buffer"`

	// MaxValueLen truncates the rendered offending value to this many
	// bytes before storage.
	// Default: 500
	MaxValueLen int `yaml:"max_value_len"`
}

// RetentionConfig contains settings for pruning stored violations.
type RetentionConfig struct {
	// Days is the retention period. Records older than this are pruned.
	// A negative value disables age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// MaxRecords caps the number of stored records. When exceeded the
	// oldest records are pruned. Zero disables the cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`

	// Schedule is the cron expression for the pruning job.
	// Default: "0 3 * * *" (daily at 03:00)
	Schedule string `yaml:"schedule"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether enforcement metrics are collected.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus namespace prefix for all metrics.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus subsystem for all metrics.
	// Default: "contract"
	Subsystem string `yaml:"subsystem"`

	// MaxFuncLabels caps the number of distinct function names used as
	// label values before further functions collapse into "other".
	// Guards against cardinality explosions.
	// Default: 1000
	MaxFuncLabels int `yaml:"max_func_labels"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`
}
