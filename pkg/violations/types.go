package violations

import (
	"context"
	"time"
)

// Record represents a stored contract violation. It captures everything
// needed to understand the failure after the fact: which callable, which
// parameter, what was declared, and what actually arrived.
type Record struct {
	// ID is a UUID v4 assigned by the recorder.
	ID string `json:"id"`

	// Time is when the violation was observed.
	Time time.Time `json:"time"`

	// Func is the callable's name.
	Func string `json:"func"`

	// Param is the offending parameter name; empty for return violations.
	Param string `json:"param"`

	// Check identifies the verification that failed: "argument", "default",
	// or "return".
	Check string `json:"check"`

	// Declared is the rendered declared type.
	Declared string `json:"declared"`

	// Value is the rendered offending value, truncated to the recorder's
	// configured maximum length.
	Value string `json:"value"`

	// ValueType is the rendered runtime type of the offending value.
	ValueType string `json:"value_type"`

	// Message is the full violation message.
	Message string `json:"message"`
}

// Query defines filter parameters for querying violation records.
type Query struct {
	// Time range
	StartTime *time.Time `json:"start_time,omitempty"` // Inclusive start time
	EndTime   *time.Time `json:"end_time,omitempty"`   // Inclusive end time

	// Filters
	Func  string `json:"func,omitempty"`  // Filter by callable name
	Param string `json:"param,omitempty"` // Filter by parameter name
	Check string `json:"check,omitempty"` // Filter by check kind

	// Pagination
	Limit  int `json:"limit,omitempty"`  // Max records to return
	Offset int `json:"offset,omitempty"` // Skip N records
}

// Storage defines the interface for violation storage backends.
// Implementations must be thread-safe and support concurrent access.
type Storage interface {
	// Store persists a violation record.
	Store(ctx context.Context, record *Record) error

	// Query retrieves violation records matching the query filters,
	// newest first. Returns an empty slice if no records match.
	Query(ctx context.Context, query *Query) ([]*Record, error)

	// Count returns the number of violation records matching the query
	// filters.
	Count(ctx context.Context, query *Query) (int64, error)

	// Delete removes violation records matching the query filters.
	// Returns the number of records deleted. Used for retention
	// enforcement.
	Delete(ctx context.Context, query *Query) (int64, error)

	// Close releases any resources held by the storage backend.
	Close() error
}
