package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/violations"
)

func newTestSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(&SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "violations.db"),
		MaxOpenConns: 2,
		BusyTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func TestSQLiteStorage_RoundTrip(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	want := testRecord("round-trip", time.Now().UTC().Truncate(time.Second))
	if err := s.Store(ctx, want); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Query(ctx, &violations.Query{Func: "Divide"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}

	r := got[0]
	if r.ID != want.ID || r.Func != want.Func || r.Param != want.Param ||
		r.Check != want.Check || r.Declared != want.Declared ||
		r.Value != want.Value || r.ValueType != want.ValueType ||
		r.Message != want.Message {
		t.Errorf("record mismatch:\n got %+v\nwant %+v", r, want)
	}
	if !r.Time.Equal(want.Time) {
		t.Errorf("Time = %v, want %v", r.Time, want.Time)
	}
}

func TestSQLiteStorage_FiltersAndOrder(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 6; i++ {
		r := testRecord(fmt.Sprintf("id-%d", i), base.Add(time.Duration(i)*time.Minute))
		if i >= 3 {
			r.Func = "Scale"
			r.Param = ""
			r.Check = "return"
		}
		if err := s.Store(ctx, r); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	scale, err := s.Query(ctx, &violations.Query{Func: "Scale"})
	if err != nil {
		t.Fatalf("Query(Func) error = %v", err)
	}
	if len(scale) != 3 {
		t.Fatalf("len(scale) = %d, want 3", len(scale))
	}
	if scale[0].ID != "id-5" {
		t.Errorf("newest first expected, got %s", scale[0].ID)
	}

	count, err := s.Count(ctx, &violations.Query{Check: "argument"})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 3 {
		t.Errorf("Count(argument) = %d, want 3", count)
	}

	cutoff := base.Add(90 * time.Second)
	deleted, err := s.Delete(ctx, &violations.Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("Delete(EndTime) = %d, want 2", deleted)
	}

	remaining, err := s.Count(ctx, &violations.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if remaining != 4 {
		t.Errorf("remaining = %d, want 4", remaining)
	}
}

func TestSQLiteStorage_Pagination(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 10; i++ {
		if err := s.Store(ctx, testRecord(fmt.Sprintf("id-%d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}

	page, err := s.Query(ctx, &violations.Query{Limit: 4, Offset: 3})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(page) != 4 {
		t.Fatalf("len(page) = %d, want 4", len(page))
	}
	if page[0].ID != "id-6" || page[3].ID != "id-3" {
		t.Errorf("unexpected page: %s..%s", page[0].ID, page[3].ID)
	}
}

func TestSQLiteStorage_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "violations.db")
	ctx := context.Background()

	first, err := NewSQLiteStorage(&SQLiteConfig{Path: path, MaxOpenConns: 1, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSQLiteStorage() error = %v", err)
	}
	if err := first.Store(ctx, testRecord("persisted", time.Now().UTC())); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	second, err := NewSQLiteStorage(&SQLiteConfig{Path: path, MaxOpenConns: 1, BusyTimeout: time.Second})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer second.Close()

	count, err := second.Count(ctx, &violations.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count after reopen = %d, want 1", count)
	}
}
