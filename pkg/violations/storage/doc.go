// Package storage provides violation storage backends.
//
// Two implementations of the violations.Storage interface are available:
// MemoryStorage, a bounded in-memory ring for tests and recent-window
// inspection, and SQLiteStorage, a durable backend using a pure-Go SQLite
// driver with WAL mode enabled.
package storage
