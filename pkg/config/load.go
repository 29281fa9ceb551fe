package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadWithEnvOverrides for that functionality.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention CALLISTO_SECTION_FIELD (e.g., CALLISTO_VIOLATIONS_BACKEND).
// Environment variables always take precedence over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format CALLISTO_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Enforcement overrides
	if val := os.Getenv("CALLISTO_ENFORCEMENT_REQUIRE_ARGS"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Enforcement.RequireArgs = b
		}
	}
	if val := os.Getenv("CALLISTO_ENFORCEMENT_REQUIRE_RETURN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Enforcement.RequireReturn = b
		}
	}
	if val := os.Getenv("CALLISTO_ENFORCEMENT_IGNORE_SELF"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Enforcement.IgnoreSelf = b
		}
	}
	if val := os.Getenv("CALLISTO_ENFORCEMENT_RETURN_EXEMPT"); val != "" {
		cfg.Enforcement.ReturnExempt = splitList(val)
	}

	// Violations overrides
	if val := os.Getenv("CALLISTO_VIOLATIONS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Violations.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_BACKEND"); val != "" {
		cfg.Violations.Backend = val
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_SQLITE_PATH"); val != "" {
		cfg.Violations.SQLite.Path = val
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_SQLITE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Violations.SQLite.MaxOpenConns = i
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_SQLITE_BUSY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Violations.SQLite.BusyTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_RECORDER_BUFFER"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Violations.Recorder.Buffer = i
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_RECORDER_MAX_VALUE_LEN"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Violations.Recorder.MaxValueLen = i
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Violations.Retention.Days = i
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Violations.Retention.MaxRecords = i
		}
	}
	if val := os.Getenv("CALLISTO_VIOLATIONS_RETENTION_SCHEDULE"); val != "" {
		cfg.Violations.Retention.Schedule = val
	}

	// Metrics overrides
	if val := os.Getenv("CALLISTO_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := os.Getenv("CALLISTO_METRICS_SUBSYSTEM"); val != "" {
		cfg.Metrics.Subsystem = val
	}
	if val := os.Getenv("CALLISTO_METRICS_MAX_FUNC_LABELS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.MaxFuncLabels = i
		}
	}

	// Logging overrides
	if val := os.Getenv("CALLISTO_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
}

// splitList splits a comma-separated environment value into a trimmed list.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
