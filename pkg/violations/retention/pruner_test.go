package retention

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/violations"
	"mercator-hq/callisto/pkg/violations/storage"
)

func storeRecords(t *testing.T, s violations.Storage, times ...time.Time) {
	t.Helper()
	for i, at := range times {
		err := s.Store(context.Background(), &violations.Record{
			ID:       fmt.Sprintf("id-%d", i),
			Time:     at,
			Func:     "Divide",
			Check:    "argument",
			Declared: "float64",
			Message:  "violation",
		})
		if err != nil {
			t.Fatalf("Store() error = %v", err)
		}
	}
}

func TestPruner_PruneByAge(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	now := time.Now()
	storeRecords(t, s,
		now.AddDate(0, 0, -100), // past retention
		now.AddDate(0, 0, -91),  // past retention
		now.AddDate(0, 0, -10),  // kept
		now,                     // kept
	)

	p := NewPruner(s, &Config{RetentionDays: 90})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	count, err := s.Count(context.Background(), &violations.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("remaining = %d, want 2", count)
	}
}

func TestPruner_PruneByCount(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	now := time.Now()
	times := make([]time.Time, 10)
	for i := range times {
		times[i] = now.Add(time.Duration(i) * time.Minute)
	}
	storeRecords(t, s, times...)

	p := NewPruner(s, &Config{RetentionDays: 0, MaxRecords: 4})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 6 {
		t.Errorf("deleted = %d, want 6", deleted)
	}

	remaining, err := s.Query(context.Background(), &violations.Query{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(remaining) != 4 {
		t.Fatalf("remaining = %d, want 4", len(remaining))
	}
	// The newest four survive.
	if remaining[0].ID != "id-9" || remaining[3].ID != "id-6" {
		t.Errorf("wrong survivors: %s..%s", remaining[0].ID, remaining[3].ID)
	}
}

func TestPruner_NothingToPrune(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	storeRecords(t, s, time.Now())

	p := NewPruner(s, &Config{RetentionDays: 90, MaxRecords: 100})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 0 {
		t.Errorf("deleted = %d, want 0", deleted)
	}
}

func TestPruner_BothPhases(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	now := time.Now()
	storeRecords(t, s,
		now.AddDate(0, 0, -120), // age-pruned
		now.Add(-3*time.Hour),   // count-pruned
		now.Add(-2*time.Hour),   // count-pruned
		now.Add(-time.Hour),     // kept
		now,                     // kept
	)

	p := NewPruner(s, &Config{RetentionDays: 90, MaxRecords: 2})
	deleted, err := p.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}

	count, err := s.Count(context.Background(), &violations.Query{})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 2 {
		t.Errorf("remaining = %d, want 2", count)
	}
}
