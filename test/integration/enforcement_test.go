//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/contract"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/violations"
	"mercator-hq/callisto/pkg/violations/recorder"
	"mercator-hq/callisto/pkg/violations/retention"
	"mercator-hq/callisto/pkg/violations/storage"

	"github.com/prometheus/client_golang/prometheus"
)

// TestEnforcementPipelineIntegration drives the full path: YAML config,
// enforcer construction from enforcement settings, violation recording into
// sqlite, metrics, and retention pruning.
func TestEnforcementPipelineIntegration(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "violations.db")

	configYAML := `
enforcement:
  require_args: true
  require_return: true
violations:
  enabled: true
  backend: sqlite
  sqlite:
    path: ` + dbPath + `
metrics:
  enabled: true
  namespace: itest
  subsystem: contract
logging:
  level: info
  format: text
`
	configPath := filepath.Join(dir, "callisto.yaml")
	if err := os.WriteFile(configPath, []byte(configYAML), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Storage and recorder from the violations config.
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:         cfg.Violations.SQLite.Path,
		MaxOpenConns: cfg.Violations.SQLite.MaxOpenConns,
		BusyTimeout:  cfg.Violations.SQLite.BusyTimeout,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite storage: %v", err)
	}
	defer store.Close()

	rec := recorder.NewRecorder(store, &recorder.Config{
		Buffer:       cfg.Violations.Recorder.Buffer,
		WriteTimeout: 5 * time.Second,
		MaxValueLen:  cfg.Violations.Recorder.MaxValueLen,
	})

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(&cfg.Metrics, registry)

	// Enforcer built from the enforcement config plus per-callable options.
	divide := func(a, b float64) float64 { return a / b }
	opts := append(cfg.Enforcement.Options(),
		contract.FuncName("Divide"),
		contract.ParamNames("a", "b"),
		contract.Annotate("a", "float64"),
		contract.Annotate("b", "float64"),
		contract.Return("float64"),
		contract.WithViolationSink(rec),
		contract.WithStats(collector),
	)
	enf, err := contract.New(divide, opts...)
	if err != nil {
		t.Fatalf("failed to build enforcer: %v", err)
	}

	// Conforming and violating calls.
	if _, err := enf.Call([]any{6.0, 2.0}, nil); err != nil {
		t.Fatalf("conforming call failed: %v", err)
	}
	if _, err := enf.Call([]any{6.0, "two"}, nil); err == nil {
		t.Fatal("expected violating call to fail")
	}
	if _, err := enf.Call(nil, map[string]any{"a": 1.0, "b": true}); err == nil {
		t.Fatal("expected violating keyword call to fail")
	}

	if err := rec.Close(); err != nil {
		t.Fatalf("failed to close recorder: %v", err)
	}

	ctx := context.Background()

	// Both violations must have landed in sqlite, newest first.
	records, err := store.Query(ctx, &violations.Query{Func: "Divide"})
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 recorded violations, got %d", len(records))
	}
	if records[0].Param != "b" || records[1].Param != "b" {
		t.Errorf("expected violations on parameter 'b', got %q and %q", records[0].Param, records[1].Param)
	}
	for _, r := range records {
		if r.Check != "argument" {
			t.Errorf("expected argument check, got %q", r.Check)
		}
		if r.ID == "" {
			t.Error("expected a record ID")
		}
	}

	// Metrics observed all three argument checks and one return check.
	argChecks := metricValue(t, registry, "itest_contract_checks_total",
		map[string]string{"func": "Divide", "check": "argument"})
	if argChecks != 3 {
		t.Errorf("expected 3 argument checks, got %f", argChecks)
	}
	retChecks := metricValue(t, registry, "itest_contract_checks_total",
		map[string]string{"func": "Divide", "check": "return"})
	if retChecks != 1 {
		t.Errorf("expected 1 return check, got %f", retChecks)
	}
	compiled := metricValue(t, registry, "itest_contract_compiled_contracts", nil)
	if compiled != 1 {
		t.Errorf("expected 1 compiled contract, got %f", compiled)
	}

	// Retention prune with MaxRecords 1 keeps only the newest record.
	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: 0, // no age-based pruning
		MaxRecords:    1,
	})
	pruned, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("prune failed: %v", err)
	}
	if pruned != 1 {
		t.Errorf("expected 1 pruned record, got %d", pruned)
	}

	count, err := store.Count(ctx, &violations.Query{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 remaining record, got %d", count)
	}
}

// TestConfigWatcherIntegration verifies a live config file edit reaches the
// reload callback through the fsnotify watcher.
func TestConfigWatcherIntegration(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "callisto.yaml")

	write := func(level string) {
		content := "logging:\n  level: " + level + "\n"
		if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	write("info")

	watcher, err := config.NewWatcher(config.WatcherConfig{
		Path:             configPath,
		DebounceInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("failed to create watcher: %v", err)
	}
	defer watcher.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan *config.Config, 1)
	go func() {
		_ = watcher.Watch(ctx, func(cfg *config.Config) {
			select {
			case updates <- cfg:
			default:
			}
		})
	}()

	// Give the watch loop a moment to register before editing the file.
	time.Sleep(100 * time.Millisecond)
	write("debug")

	select {
	case cfg := <-updates:
		if cfg.Logging.Level != "debug" {
			t.Errorf("expected reloaded level 'debug', got %q", cfg.Logging.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

// metricValue gathers one sample from the registry by metric name and label
// match. A missing series reads as zero.
func metricValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	mfs, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			matched := true
			for k, v := range labels {
				found := false
				for _, lp := range m.GetLabel() {
					if lp.GetName() == k && lp.GetValue() == v {
						found = true
						break
					}
				}
				if !found {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			if m.GetGauge() != nil {
				return m.GetGauge().GetValue()
			}
		}
	}
	return 0
}
