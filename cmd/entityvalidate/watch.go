package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/schema"
)

func (e *environment) watchCommand() *cli.Command {
	flags := append(e.engineFlags(),
		&cli.StringFlag{Name: "schema", Required: true, Usage: "schema file or directory to watch"},
		&cli.DurationFlag{Name: "debounce", Value: schema.DefaultDebounce, Usage: "quiet period before reloading"},
	)
	return &cli.Command{
		Name:      "watch",
		Usage:     "check records again every time the schema files change",
		ArgsUsage: "<record.json>...",
		Flags:     flags,
		Action:    e.watch,
	}
}

func (e *environment) watch(ctx context.Context, cmd *cli.Command) error {
	paths := cmd.Args().Slice()
	if len(paths) == 0 {
		return errNoRecords
	}

	reloaded := make(chan struct{}, 1)
	w, err := schema.NewWatcher(cmd.String("schema"),
		schema.WithDebounce(cmd.Duration("debounce")),
		schema.WithWatcherLogger(e.log.With(logger.Component("schema.watch"))),
		schema.WithReloadHook(func(_ *schema.Static, err error) {
			if err != nil {
				return
			}
			select {
			case reloaded <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}

	r, err := e.newRunner(cmd, w)
	if err != nil {
		return err
	}
	if _, err := r.check(ctx, paths); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for {
		select {
		case <-ctx.Done():
			return <-done
		case err := <-done:
			return err
		case <-reloaded:
			fmt.Fprintln(e.stdout, "schemas reloaded")
			if _, err := r.check(ctx, paths); err != nil {
				return err
			}
		}
	}
}
