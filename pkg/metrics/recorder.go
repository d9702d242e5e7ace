package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// Config names the metric family.
type Config struct {
	Namespace string `env:"METRICS_NAMESPACE" envDefault:"entityvalidate"`
	Subsystem string `env:"METRICS_SUBSYSTEM" envDefault:"validator"`
}

// Recorder turns run reports and schema lookups into metrics.
type Recorder struct {
	runsTotal       *prometheus.CounterVec
	violationsTotal *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	lookupsTotal    *prometheus.CounterVec
}

// New creates a Recorder and registers its collectors on reg.
// It panics if they are already registered.
func New(cfg Config, reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of validation runs by outcome",
			},
			[]string{"entity_type", "bundle", "outcome"},
		),
		violationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "violations_total",
				Help:      "Total number of reported violations by field",
			},
			[]string{"entity_type", "bundle", "field"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to 2.6s
			},
			[]string{"entity_type", "bundle"},
		),
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "schema_lookups_total",
				Help:      "Total number of schema cache lookups by result",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(r.runsTotal, r.violationsTotal, r.runDuration, r.lookupsTotal)
	return r
}

// ObserveRun implements validator.Observer.
func (r *Recorder) ObserveRun(_ context.Context, rep validator.Report) {
	r.runsTotal.WithLabelValues(rep.EntityType, rep.Bundle, string(rep.Outcome)).Inc()
	r.runDuration.WithLabelValues(rep.EntityType, rep.Bundle).Observe(rep.Duration.Seconds())
	for _, v := range rep.Violations {
		r.violationsTotal.WithLabelValues(rep.EntityType, rep.Bundle, v.Field).Inc()
	}
}

// SchemaLookup counts one schema cache lookup.
func (r *Recorder) SchemaLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.lookupsTotal.WithLabelValues(result).Inc()
}
