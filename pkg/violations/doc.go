// Package violations provides an audit trail for contract violations.
//
// Enforcement itself only returns errors; applications that want a durable
// record of every failed check plug a recorder into their contracts:
//
//	store := storage.NewMemoryStorage(nil)
//	rec := recorder.NewRecorder(store, nil)
//	defer rec.Close()
//
//	enf, err := contract.New(fn, contract.WithViolationSink(rec))
//
// The recorder assigns UUIDs and writes records asynchronously so a slow
// backend never blocks a verified call. Storage backends are pluggable
// through the Storage interface; the storage subpackage ships an in-memory
// ring buffer and a SQLite backend. The retention subpackage prunes old
// records by age and by count, on demand or on a cron schedule.
package violations
