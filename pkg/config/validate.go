package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "violations.backend").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateViolations(&cfg.Violations)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateViolations validates the violations section.
func validateViolations(cfg *ViolationsConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case "memory", "sqlite":
	default:
		errs = append(errs, FieldError{
			Field:   "violations.backend",
			Message: fmt.Sprintf("unknown backend %q (must be \"memory\" or \"sqlite\")", cfg.Backend),
		})
	}

	if cfg.Backend == "sqlite" && cfg.SQLite.Path == "" {
		errs = append(errs, FieldError{
			Field:   "violations.sqlite.path",
			Message: "sqlite path is required when the sqlite backend is selected",
		})
	}
	if cfg.SQLite.MaxOpenConns < 0 {
		errs = append(errs, FieldError{
			Field:   "violations.sqlite.max_open_conns",
			Message: "must not be negative",
		})
	}
	if cfg.Recorder.Buffer < 0 {
		errs = append(errs, FieldError{
			Field:   "violations.recorder.buffer",
			Message: "must not be negative",
		})
	}
	if cfg.Recorder.MaxValueLen < 0 {
		errs = append(errs, FieldError{
			Field:   "violations.recorder.max_value_len",
			Message: "must not be negative",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "violations.retention.max_records",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateMetrics validates the metrics section.
func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Namespace == "" {
		errs = append(errs, FieldError{
			Field:   "metrics.namespace",
			Message: "namespace is required when metrics are enabled",
		})
	}
	if cfg.MaxFuncLabels < 0 {
		errs = append(errs, FieldError{
			Field:   "metrics.max_func_labels",
			Message: "must not be negative",
		})
	}

	return errs
}

// validateLogging validates the logging section.
func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q (must be one of: debug, info, warn, error)", cfg.Level),
		})
	}

	switch cfg.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q (must be \"json\" or \"text\")", cfg.Format),
		})
	}

	return errs
}
