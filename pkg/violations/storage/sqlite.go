package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"mercator-hq/callisto/pkg/violations"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/violations.db",
		MaxOpenConns: 10,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend. It initializes the
// database schema and enables WAL mode.
func NewSQLiteStorage(config *SQLiteConfig) (*SQLiteStorage, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "violations.storage.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, violations.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteStorage{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", config.Path,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return violations.NewStorageError("sqlite", "enable_wal", err)
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return violations.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return violations.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return violations.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return violations.NewStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return violations.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists a violation record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *violations.Record) error {
	query := `
		INSERT INTO violations (
			id, time, func, param, "check", declared, value, value_type, message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.Time,
		record.Func, record.Param, record.Check,
		record.Declared, record.Value, record.ValueType, record.Message,
	)
	if err != nil {
		return violations.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves violation records matching the query filters, newest first.
func (s *SQLiteStorage) Query(ctx context.Context, query *violations.Query) ([]*violations.Record, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := `SELECT id, time, func, param, "check", declared, value, value_type, message FROM violations`
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}
	sqlQuery += " ORDER BY time DESC"

	limit := 100
	if query.Limit > 0 {
		limit = query.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if query.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", query.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, violations.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*violations.Record{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, violations.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, violations.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Count returns the number of violation records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *violations.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM violations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, violations.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes violation records matching the query filters.
// Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *violations.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM violations"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, violations.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, violations.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return violations.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *violations.Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if query.StartTime != nil {
		conditions = append(conditions, "time >= ?")
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		conditions = append(conditions, "time <= ?")
		args = append(args, *query.EndTime)
	}
	if query.Func != "" {
		conditions = append(conditions, "func = ?")
		args = append(args, query.Func)
	}
	if query.Param != "" {
		conditions = append(conditions, "param = ?")
		args = append(args, query.Param)
	}
	if query.Check != "" {
		conditions = append(conditions, `"check" = ?`)
		args = append(args, query.Check)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into a Record.
func scanRow(rows *sql.Rows) (*violations.Record, error) {
	var record violations.Record
	var param, value, valueType sql.NullString

	err := rows.Scan(
		&record.ID, &record.Time,
		&record.Func, &param, &record.Check,
		&record.Declared, &value, &valueType, &record.Message,
	)
	if err != nil {
		return nil, err
	}

	record.Param = param.String
	record.Value = value.String
	record.ValueType = valueType.String

	return &record, nil
}
