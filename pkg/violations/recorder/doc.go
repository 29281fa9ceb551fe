// Package recorder persists contract violations asynchronously.
//
// Recorder implements contract.ViolationSink: plug it into an Enforcer with
// contract.WithViolationSink and every failed check is assigned a UUID and
// written to the configured storage backend by a background worker. The
// offending value is rendered and truncated before storage so arbitrarily
// large arguments cannot bloat the audit trail.
package recorder
