package storage

import (
	"context"
	"sync"

	"mercator-hq/callisto/pkg/violations"
)

// MemoryConfig contains configuration for the in-memory storage backend.
type MemoryConfig struct {
	// MaxRecords bounds the store: when full, storing a new record evicts
	// the oldest one. Zero means unbounded.
	// Default: 10000
	MaxRecords int
}

// DefaultMemoryConfig returns the default in-memory configuration.
func DefaultMemoryConfig() *MemoryConfig {
	return &MemoryConfig{MaxRecords: 10000}
}

// MemoryStorage implements the Storage interface with a bounded in-memory
// ring. Oldest records are evicted first when the bound is reached. Suitable
// for tests and for processes that only need a recent window of violations.
type MemoryStorage struct {
	records []*violations.Record // append order, oldest first
	max     int
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory storage backend.
func NewMemoryStorage(config *MemoryConfig) *MemoryStorage {
	if config == nil {
		config = DefaultMemoryConfig()
	}
	return &MemoryStorage{max: config.MaxRecords}
}

// Store persists a violation record, evicting the oldest record when the
// bound is reached.
func (s *MemoryStorage) Store(ctx context.Context, record *violations.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	recordCopy := *record
	if s.max > 0 && len(s.records) >= s.max {
		n := copy(s.records, s.records[1:])
		s.records = s.records[:n]
	}
	s.records = append(s.records, &recordCopy)

	return nil
}

// Query retrieves violation records matching the query filters, newest
// first.
func (s *MemoryStorage) Query(ctx context.Context, query *violations.Query) ([]*violations.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []*violations.Record{}
	// Walk newest first.
	for i := len(s.records) - 1; i >= 0; i-- {
		if matchesQuery(s.records[i], query) {
			recordCopy := *s.records[i]
			matched = append(matched, &recordCopy)
		}
	}

	start := query.Offset
	if start > len(matched) {
		return []*violations.Record{}, nil
	}
	end := len(matched)
	if query.Limit > 0 && start+query.Limit < end {
		end = start + query.Limit
	}

	return matched[start:end], nil
}

// Count returns the number of violation records matching the query filters.
func (s *MemoryStorage) Count(ctx context.Context, query *violations.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if matchesQuery(record, query) {
			count++
		}
	}

	return count, nil
}

// Delete removes violation records matching the query filters.
func (s *MemoryStorage) Delete(ctx context.Context, query *violations.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	kept := s.records[:0]
	for _, record := range s.records {
		if matchesQuery(record, query) {
			deleted++
			continue
		}
		kept = append(kept, record)
	}
	s.records = kept

	return deleted, nil
}

// Close releases resources held by the storage backend.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// Size returns the number of records in storage (for testing).
func (s *MemoryStorage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.records)
}

// matchesQuery checks if a record matches the query filters.
func matchesQuery(record *violations.Record, query *violations.Query) bool {
	if query.StartTime != nil && record.Time.Before(*query.StartTime) {
		return false
	}
	if query.EndTime != nil && record.Time.After(*query.EndTime) {
		return false
	}
	if query.Func != "" && record.Func != query.Func {
		return false
	}
	if query.Param != "" && record.Param != query.Param {
		return false
	}
	if query.Check != "" && record.Check != query.Check {
		return false
	}
	return true
}
