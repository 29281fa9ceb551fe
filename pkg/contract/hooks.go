package contract

import (
	"time"
)

// CheckKind identifies which verification a violation came from.
type CheckKind string

const (
	// CheckArgument is a per-call argument verification.
	CheckArgument CheckKind = "argument"

	// CheckDefault is the eager construction-time verification of a
	// declared default value.
	CheckDefault CheckKind = "default"

	// CheckReturn is a per-call return value verification.
	CheckReturn CheckKind = "return"
)

// Violation is the observation handed to sinks when a value fails its
// declared type. Types are carried in rendered form; Value is the offending
// value itself, and sinks that retain violations should render it rather
// than hold the reference.
type Violation struct {
	// Time is when the violation was observed.
	Time time.Time

	// Func is the callable's name.
	Func string

	// Param is the offending parameter name; empty for return violations.
	Param string

	// Check is the verification that failed.
	Check CheckKind

	// Declared is the rendered declared type.
	Declared string

	// Value is the offending value.
	Value any

	// ValueType is the rendered runtime type of the offending value.
	ValueType string

	// Message is the full violation message.
	Message string
}

// ViolationSink observes violations. Implementations must be safe for
// concurrent use; Enforcers sharing a sink may be called from many
// goroutines.
type ViolationSink interface {
	RecordViolation(v Violation)
}

// StatsSink observes verification outcomes and contract compilation.
// Implementations must be safe for concurrent use.
type StatsSink interface {
	// ObserveVerification is called once per VerifyArgs/VerifyResult.
	ObserveVerification(fn string, check CheckKind, elapsed time.Duration, violated bool)

	// ContractCompiled is called once per successfully constructed Enforcer.
	ContractCompiled(fn string)
}
