package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/entityvalidate/pkg/metrics"
	"github.com/dmitrymomot/entityvalidate/pkg/property"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var testConfig = metrics.Config{Namespace: "test", Subsystem: "validator"}

func TestRecorder_ObserveRun(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.New(testConfig, reg)

	rec.ObserveRun(context.Background(), validator.Report{
		EntityType: "node",
		Bundle:     "article",
		Outcome:    validator.StateInvalidSilent,
		Duration:   3 * time.Millisecond,
		Violations: []validator.ValidationError{
			validator.NewValidationError("title", validator.MsgCannotBeEmpty, nil),
			validator.NewValidationError("title", validator.MsgNotText, nil),
			validator.NewValidationError("year", validator.MsgNotYear, nil),
		},
	})
	rec.ObserveRun(context.Background(), validator.Report{
		EntityType: "node",
		Bundle:     "article",
		Outcome:    validator.StateValid,
	})

	expected := `
# HELP test_validator_runs_total Total number of validation runs by outcome
# TYPE test_validator_runs_total counter
test_validator_runs_total{bundle="article",entity_type="node",outcome="invalid_silent"} 1
test_validator_runs_total{bundle="article",entity_type="node",outcome="valid"} 1
# HELP test_validator_violations_total Total number of reported violations by field
# TYPE test_validator_violations_total counter
test_validator_violations_total{bundle="article",entity_type="node",field="title"} 2
test_validator_violations_total{bundle="article",entity_type="node",field="year"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"test_validator_runs_total", "test_validator_violations_total")
	require.NoError(t, err)
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "test_validator_run_duration_seconds"))
}

func TestRecorder_SchemaLookup(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.New(testConfig, reg)
	rec.SchemaLookup(false)
	rec.SchemaLookup(true)
	rec.SchemaLookup(true)

	expected := `
# HELP test_validator_schema_lookups_total Total number of schema cache lookups by result
# TYPE test_validator_schema_lookups_total counter
test_validator_schema_lookups_total{result="hit"} 2
test_validator_schema_lookups_total{result="miss"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_validator_schema_lookups_total"))
}

func TestRecorder_Engine(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec := metrics.New(testConfig, reg)
	e := validator.New(
		validator.WithMetadata(validator.MetadataFunc(func(context.Context, string, string) ([]validator.FieldSpec, error) {
			return []validator.FieldSpec{{Name: "title", Required: true}}, nil
		})),
		validator.WithProperties(property.New()),
		validator.WithEntityType("node"),
		validator.WithBundle("page"),
		validator.WithObserver(rec),
	)

	_, err := e.Validate(context.Background(), map[string]any{}, false)
	require.True(t, validator.IsValidationFailed(err))

	expected := `
# HELP test_validator_runs_total Total number of validation runs by outcome
# TYPE test_validator_runs_total counter
test_validator_runs_total{bundle="page",entity_type="node",outcome="invalid_raised"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "test_validator_runs_total"))
}

func TestNew_DuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	metrics.New(testConfig, reg)
	assert.Panics(t, func() { metrics.New(testConfig, reg) })
}
