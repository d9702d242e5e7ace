// Package metrics exports validation runs as Prometheus metrics.
//
// A Recorder is a validator.Observer. Register it on an engine and on a
// schema.Cached provider, then expose the registry over HTTP or write it to
// a node_exporter textfile:
//
//	reg := prometheus.NewRegistry()
//	rec := metrics.New(cfg, reg)
//	engine := validator.New(validator.WithObserver(rec), ...)
//	provider := schema.NewCached(base, 64, time.Minute).OnLookup(rec.SchemaLookup)
//	err := prometheus.WriteToTextfile("validate.prom", reg)
//
// Metrics, with the default namespace and subsystem:
//   - entityvalidate_validator_runs_total{entity_type, bundle, outcome}
//   - entityvalidate_validator_violations_total{entity_type, bundle, field}
//   - entityvalidate_validator_run_duration_seconds{entity_type, bundle}
//   - entityvalidate_validator_schema_lookups_total{result}
package metrics
