package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/violations/storage"
)

func TestScheduler_StartAndStop(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	p := NewPruner(s, &Config{RetentionDays: 90, PruneSchedule: "0 3 * * *"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !p.scheduler.IsRunning() {
		t.Error("scheduler not running after Start")
	}

	next := p.NextPruning()
	if next == nil {
		t.Fatal("NextPruning() = nil, want a scheduled time")
	}
	if !next.After(time.Now()) {
		t.Errorf("next run %v is not in the future", next)
	}

	p.Stop()
	if p.scheduler.IsRunning() {
		t.Error("scheduler still running after Stop")
	}
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	p := NewPruner(s, &Config{PruneSchedule: "not a cron expression"})

	if err := p.Start(context.Background()); err == nil {
		t.Fatal("Start() = nil, want error for invalid schedule")
	}
}

func TestScheduler_EmptyScheduleIsNoop(t *testing.T) {
	s := storage.NewMemoryStorage(nil)
	defer s.Close()

	p := NewPruner(s, &Config{PruneSchedule: ""})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if p.scheduler.IsRunning() {
		t.Error("scheduler should not run without a schedule")
	}
}
