package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/entityvalidate/pkg/message"
	"github.com/dmitrymomot/entityvalidate/pkg/metrics"
	"github.com/dmitrymomot/entityvalidate/pkg/notify"
	"github.com/dmitrymomot/entityvalidate/pkg/property"
	"github.com/dmitrymomot/entityvalidate/pkg/schema"
	"github.com/dmitrymomot/entityvalidate/pkg/typecheck"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var errNoRecords = errors.New("no records given")

// engineFlags configure the engine of check and watch.
func (e *environment) engineFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "entity", Value: e.settings.Validator.EntityType, Usage: "entity type"},
		&cli.StringFlag{Name: "bundle", Value: e.settings.Validator.Bundle, Usage: "bundle"},
		&cli.IntFlag{Name: "level", Usage: "error level: 0 collect, 1 emit, 2 stop at first error"},
		&cli.BoolFlag{Name: "silent", Usage: "report failures without raising"},
		&cli.StringFlag{Name: "types", Usage: "YAML map of extra type descriptors to JSON schemas"},
		&cli.StringFlag{Name: "catalog", Usage: "YAML message translations"},
		&cli.StringFlag{Name: "lang", Value: "en", Usage: "message language"},
	}
}

func (e *environment) checkCommand() *cli.Command {
	flags := append(e.engineFlags(),
		&cli.StringFlag{Name: "schema", Usage: "schema file or directory (YAML or JSON)"},
		&cli.DurationFlag{Name: "redis-ttl", Usage: "lifetime of schemas copied to redis"},
		&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus metrics of the run to this file"},
		e.redisFlag(),
	)
	return &cli.Command{
		Name:      "check",
		Usage:     "validate JSON records against a schema",
		ArgsUsage: "<record.json>... (- reads stdin)",
		Flags:     append(flags, e.storeFlags()...),
		Action:    e.check,
	}
}

func (e *environment) check(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errNoRecords
	}

	metadata, closeStores, err := e.provider(ctx, cmd)
	defer closeStores()
	if err != nil {
		return err
	}

	var observers []validator.Observer
	var registry *prometheus.Registry
	if cmd.String("metrics-file") != "" {
		registry = prometheus.NewRegistry()
		recorder := metrics.New(e.settings.Metrics, registry)
		observers = append(observers, recorder)
		if cached, ok := metadata.(*schema.Cached); ok {
			cached.OnLookup(recorder.SchemaLookup)
		}
	}

	r, err := e.newRunner(cmd, metadata, observers...)
	if err != nil {
		return err
	}
	invalid, err := r.check(ctx, paths)
	if err != nil {
		return err
	}

	if registry != nil {
		if err := prometheus.WriteToTextfile(cmd.String("metrics-file"), registry); err != nil {
			return err
		}
	}
	if invalid > 0 {
		return errRecordsInvalid
	}
	return nil
}

// runner validates record files with one engine.
type runner struct {
	env      *environment
	engine   *validator.Engine
	messages *notify.Memory
	silent   bool
}

func (e *environment) newRunner(cmd *cli.Command, metadata validator.Metadata, observers ...validator.Observer) (*runner, error) {
	level := e.settings.Validator.ErrorLevel
	if cmd.IsSet("level") {
		level = int(cmd.Int("level"))
	}
	if err := (validator.Config{ErrorLevel: level}).Validate(); err != nil {
		return nil, err
	}

	checker, err := loadTypes(cmd.String("types"))
	if err != nil {
		return nil, err
	}

	messages := notify.NewMemory()
	opts := []validator.Option{
		validator.WithMetadata(metadata),
		validator.WithProperties(property.New()),
		validator.WithTypeChecker(checker),
		validator.WithEntityType(cmd.String("entity")),
		validator.WithBundle(cmd.String("bundle")),
		validator.WithLogger(e.log),
		validator.WithEmitter(notify.Multi{messages, notify.NewLog(e.log)}),
		validator.WithErrorLevel(validator.Level(level)),
	}
	for _, o := range observers {
		opts = append(opts, validator.WithObserver(o))
	}
	if path := cmd.String("catalog"); path != "" {
		formatter, err := loadCatalog(path, cmd.String("lang"))
		if err != nil {
			return nil, err
		}
		opts = append(opts, validator.WithFormatter(formatter))
	}

	return &runner{
		env:      e,
		engine:   validator.New(opts...),
		messages: messages,
		silent:   cmd.Bool("silent"),
	}, nil
}

// check validates every path and returns how many records were invalid.
func (r *runner) check(ctx context.Context, paths []string) (int, error) {
	out := r.env.stdout
	invalid := 0
	for _, path := range paths {
		record, err := r.env.readRecord(path)
		if err != nil {
			return invalid, err
		}

		ok, err := r.engine.Validate(ctx, record, r.silent)
		if err != nil && !validator.IsValidationFailed(err) {
			return invalid, fmt.Errorf("%s: %w", path, err)
		}

		for _, msg := range r.messages.Drain() {
			fmt.Fprintf(out, "%s: %s: %s\n", path, msg.Severity, msg.Text)
		}
		if ok {
			fmt.Fprintf(out, "%s: valid\n", path)
			continue
		}

		invalid++
		fmt.Fprintf(out, "%s: invalid\n", path)
		for _, line := range strings.Split(r.engine.SquashedErrors(), validator.Separator) {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	return invalid, nil
}

func (e *environment) readRecord(path string) (map[string]any, error) {
	var r io.Reader = e.stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var record map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%s: record must be a JSON object", path)
	}
	return record, nil
}

// loadTypes registers the descriptors of a YAML file on top of the built-ins.
func loadTypes(path string) (*typecheck.Checker, error) {
	checker := typecheck.New()
	if path == "" {
		return checker, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schemas map[string]any
	if err := yaml.Unmarshal(data, &schemas); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for name, s := range schemas {
		raw, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("%s: type %s: %w", path, name, err)
		}
		if err := checker.Register(name, string(raw)); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return checker, nil
}

func loadCatalog(path, lang string) (message.Formatter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	catalog := message.NewCatalog()
	if err := catalog.LoadYAML(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog.Formatter(lang), nil
}
