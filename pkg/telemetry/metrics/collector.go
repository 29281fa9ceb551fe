package metrics

import (
	"sync"
	"time"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/contract"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes contract verification activity as Prometheus metrics.
// It implements both contract.StatsSink and contract.ViolationSink, so a
// single Collector can be wired to an Enforcer with contract.WithStats and
// contract.WithViolationSink.
//
// Metrics:
//   - <ns>_<sub>_checks_total{func,check}: verifications performed
//   - <ns>_<sub>_violations_total{func,parameter,check}: values that failed
//     their declared type
//   - <ns>_<sub>_verify_duration_seconds{check}: verification latency
//   - <ns>_<sub>_compiled_contracts: enforcers constructed so far
//
// The func label is capped by MaxFuncLabels; once the cap is reached, new
// callable names collapse into "other" to keep cardinality bounded.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	checksTotal       *prometheus.CounterVec
	violationsTotal   *prometheus.CounterVec
	verifyDuration    *prometheus.HistogramVec
	compiledContracts prometheus.Gauge

	funcLabels *CardinalityLimiter
}

// NewCollector creates a collector registered against the provided registry.
// If registry is nil, a fresh private registry is created; use Registry or
// Handler to expose it.
//
// Example:
//
//	collector := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, nil)
//	enf, err := contract.New(divide,
//		contract.WithStats(collector),
//		contract.WithViolationSink(collector),
//	)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if cfg.MaxFuncLabels <= 0 {
		cfg.MaxFuncLabels = config.DefaultMetricsMaxFuncLabels
	}

	c := &Collector{
		config:     cfg,
		registry:   registry,
		funcLabels: NewCardinalityLimiter(cfg.MaxFuncLabels),

		checksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "checks_total",
				Help:      "Total number of contract verifications performed",
			},
			[]string{"func", "check"},
		),

		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violations_total",
				Help:      "Total number of values that failed their declared type",
			},
			[]string{"func", "parameter", "check"},
		),

		verifyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verify_duration_seconds",
				Help:      "Duration of contract verifications in seconds",
				// Verifications are reflection-bound and land in the
				// microsecond-to-millisecond range.
				Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 1e-2},
			},
			[]string{"check"},
		),

		compiledContracts: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "compiled_contracts",
				Help:      "Number of enforcers constructed",
			},
		),
	}

	registry.MustRegister(
		c.checksTotal,
		c.violationsTotal,
		c.verifyDuration,
		c.compiledContracts,
	)

	return c
}

// ObserveVerification records one verification outcome. The violated flag is
// carried by the interface but not counted here: violation counts come
// through RecordViolation, which has the parameter-level detail.
func (c *Collector) ObserveVerification(fn string, check contract.CheckKind, elapsed time.Duration, violated bool) {
	if !c.config.Enabled {
		return
	}

	c.checksTotal.WithLabelValues(c.funcLabel(fn), string(check)).Inc()
	c.verifyDuration.WithLabelValues(string(check)).Observe(elapsed.Seconds())
}

// ContractCompiled records that an enforcer was constructed for fn.
func (c *Collector) ContractCompiled(fn string) {
	if !c.config.Enabled {
		return
	}

	// Compilation names the func too; claim its label slot up front so the
	// per-call path sees a warm limiter.
	c.funcLabel(fn)
	c.compiledContracts.Inc()
}

// RecordViolation counts one contract violation.
func (c *Collector) RecordViolation(v contract.Violation) {
	if !c.config.Enabled {
		return
	}

	c.violationsTotal.WithLabelValues(c.funcLabel(v.Func), v.Param, string(v.Check)).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// funcLabel returns fn, or "other" once the label cap is reached.
func (c *Collector) funcLabel(fn string) string {
	if c.funcLabels.Allow(fn) {
		return fn
	}
	return "other"
}

// CardinalityLimiter bounds the number of distinct func label values so a
// process enforcing many dynamically named callables cannot blow up the
// metric cardinality.
type CardinalityLimiter struct {
	max     int
	current map[string]struct{}
	mu      sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most max distinct values.
func NewCardinalityLimiter(max int) *CardinalityLimiter {
	return &CardinalityLimiter{
		max:     max,
		current: make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Known values are
// always allowed; new values are admitted until the cap is reached.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.max {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the number of admitted values.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
