package metrics

import (
	"testing"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/contract"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:       true,
		Namespace:     "test",
		Subsystem:     "contract",
		MaxFuncLabels: 100,
	}
}

func TestNewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector == nil {
		t.Fatal("Expected non-nil collector")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestNewCollector_DefaultsAndNilRegistry(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}

	collector := NewCollector(cfg, nil)

	if collector.Registry() == nil {
		t.Fatal("Expected collector to create its own registry")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Expected namespace %q, got %q", config.DefaultMetricsNamespace, cfg.Namespace)
	}
	if cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("Expected subsystem %q, got %q", config.DefaultMetricsSubsystem, cfg.Subsystem)
	}
	if cfg.MaxFuncLabels != config.DefaultMetricsMaxFuncLabels {
		t.Errorf("Expected max func labels %d, got %d", config.DefaultMetricsMaxFuncLabels, cfg.MaxFuncLabels)
	}
}

func TestCollector_ObserveVerification(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	tests := []struct {
		name     string
		fn       string
		check    contract.CheckKind
		elapsed  time.Duration
		violated bool
	}{
		{
			name:    "argument check passes",
			fn:      "Divide",
			check:   contract.CheckArgument,
			elapsed: 3 * time.Microsecond,
		},
		{
			name:     "argument check violated",
			fn:       "Divide",
			check:    contract.CheckArgument,
			elapsed:  5 * time.Microsecond,
			violated: true,
		},
		{
			name:    "return check passes",
			fn:      "Divide",
			check:   contract.CheckReturn,
			elapsed: 2 * time.Microsecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector.ObserveVerification(tt.fn, tt.check, tt.elapsed, tt.violated)
		})
	}

	argChecks := testutil.ToFloat64(collector.checksTotal.WithLabelValues("Divide", "argument"))
	if argChecks != 2 {
		t.Errorf("Expected 2 argument checks, got %f", argChecks)
	}
	retChecks := testutil.ToFloat64(collector.checksTotal.WithLabelValues("Divide", "return"))
	if retChecks != 1 {
		t.Errorf("Expected 1 return check, got %f", retChecks)
	}

	// Two distinct check kinds were observed, so the histogram should have
	// two children.
	if n := testutil.CollectAndCount(collector.verifyDuration); n != 2 {
		t.Errorf("Expected 2 duration series, got %d", n)
	}
}

func TestCollector_RecordViolation(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.RecordViolation(contract.Violation{
		Time:      time.Now(),
		Func:      "Divide",
		Param:     "b",
		Check:     contract.CheckArgument,
		Declared:  "float64",
		Value:     "zero",
		ValueType: "string",
	})
	collector.RecordViolation(contract.Violation{
		Time:  time.Now(),
		Func:  "Divide",
		Check: contract.CheckReturn,
	})

	argViolations := testutil.ToFloat64(collector.violationsTotal.WithLabelValues("Divide", "b", "argument"))
	if argViolations != 1 {
		t.Errorf("Expected 1 argument violation, got %f", argViolations)
	}

	// Return violations have no parameter.
	retViolations := testutil.ToFloat64(collector.violationsTotal.WithLabelValues("Divide", "", "return"))
	if retViolations != 1 {
		t.Errorf("Expected 1 return violation, got %f", retViolations)
	}
}

func TestCollector_ContractCompiled(t *testing.T) {
	collector := NewCollector(testConfig(), prometheus.NewRegistry())

	collector.ContractCompiled("Divide")
	collector.ContractCompiled("Normalize")

	compiled := testutil.ToFloat64(collector.compiledContracts)
	if compiled != 2 {
		t.Errorf("Expected 2 compiled contracts, got %f", compiled)
	}
}

func TestCollector_DisabledRecordsNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.ObserveVerification("Divide", contract.CheckArgument, time.Microsecond, false)
	collector.RecordViolation(contract.Violation{Func: "Divide", Check: contract.CheckArgument})
	collector.ContractCompiled("Divide")

	if n := testutil.CollectAndCount(collector.checksTotal); n != 0 {
		t.Errorf("Expected no check series, got %d", n)
	}
	if n := testutil.CollectAndCount(collector.violationsTotal); n != 0 {
		t.Errorf("Expected no violation series, got %d", n)
	}
	if compiled := testutil.ToFloat64(collector.compiledContracts); compiled != 0 {
		t.Errorf("Expected 0 compiled contracts, got %f", compiled)
	}
}

func TestCollector_FuncLabelCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxFuncLabels = 2
	collector := NewCollector(cfg, prometheus.NewRegistry())

	collector.ObserveVerification("First", contract.CheckArgument, time.Microsecond, false)
	collector.ObserveVerification("Second", contract.CheckArgument, time.Microsecond, false)
	collector.ObserveVerification("Third", contract.CheckArgument, time.Microsecond, false)
	collector.ObserveVerification("Fourth", contract.CheckArgument, time.Microsecond, false)

	// The first two names claim the label slots; everything after collapses.
	other := testutil.ToFloat64(collector.checksTotal.WithLabelValues("other", "argument"))
	if other != 2 {
		t.Errorf("Expected 2 checks under 'other', got %f", other)
	}
	first := testutil.ToFloat64(collector.checksTotal.WithLabelValues("First", "argument"))
	if first != 1 {
		t.Errorf("Expected 1 check under 'First', got %f", first)
	}

	// Known names keep reporting under their own label.
	collector.ObserveVerification("Second", contract.CheckArgument, time.Microsecond, false)
	second := testutil.ToFloat64(collector.checksTotal.WithLabelValues("Second", "argument"))
	if second != 2 {
		t.Errorf("Expected 2 checks under 'Second', got %f", second)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	limiter := NewCardinalityLimiter(2)

	if !limiter.Allow("a") {
		t.Error("Expected first value to be allowed")
	}
	if !limiter.Allow("b") {
		t.Error("Expected second value to be allowed")
	}
	if limiter.Allow("c") {
		t.Error("Expected third value to be rejected at cap")
	}
	if !limiter.Allow("a") {
		t.Error("Expected known value to stay allowed")
	}
	if limiter.Count() != 2 {
		t.Errorf("Expected cardinality 2, got %d", limiter.Count())
	}
}
