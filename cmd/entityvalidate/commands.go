package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/schema"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var errNoStore = errors.New("no schema store: use --db-dsn")

func (e *environment) migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "create or upgrade the schema store tables",
		Flags: e.storeFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg := storeConfig(cmd)
			if cfg.DSN == "" {
				return errNoStore
			}
			st, err := e.openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.close()

			if err := schema.Migrate(ctx, st.db, st.driver, e.log.With(logger.Component("schema.migrate"))); err != nil {
				return err
			}
			fmt.Fprintln(e.stdout, "schema store is up to date")
			return nil
		},
	}
}

func (e *environment) importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "copy schemas from YAML files into the SQL and redis stores",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "schema", Required: true, Usage: "schema file or directory"},
			&cli.DurationFlag{Name: "redis-ttl", Usage: "lifetime of schemas written to redis"},
			e.redisFlag(),
		}, e.storeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src, err := schema.Load(cmd.String("schema"))
			if err != nil {
				return err
			}

			cfg := storeConfig(cmd)
			url := cmd.String("redis-url")
			if cfg.DSN == "" && url == "" {
				return errNoSchemaSource
			}

			if cfg.DSN != "" {
				st, err := e.openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer st.close()

				store, err := schema.NewSQLForDriver(st.db, st.driver, schema.WithTable(cfg.Table))
				if err != nil {
					return err
				}
				if err := store.Import(ctx, src); err != nil {
					return err
				}
			}

			if url != "" {
				client, err := e.openRedis(ctx, url)
				if err != nil {
					return err
				}
				defer client.Close()

				store := schema.NewRedis(client, schema.WithRedisTTL(cmd.Duration("redis-ttl")))
				if err := src.Each(func(entityType, bundle string, specs []validator.FieldSpec) error {
					return store.Save(ctx, entityType, bundle, specs)
				}); err != nil {
					return err
				}
			}

			fmt.Fprintf(e.stdout, "imported %d schemas\n", len(src.Keys()))
			return nil
		},
	}
}

func (e *environment) rulesCommand() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "list the built-in validators and preprocessors",
		Action: func(context.Context, *cli.Command) error {
			registry := validator.NewRegistry()
			fmt.Fprintln(e.stdout, "validators:")
			for _, name := range registry.Validators() {
				fmt.Fprintf(e.stdout, "  %s\n", name)
			}
			fmt.Fprintln(e.stdout, "preprocessors:")
			for _, name := range registry.Preprocessors() {
				fmt.Fprintf(e.stdout, "  %s\n", name)
			}
			return nil
		},
	}
}

func (e *environment) healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check that the configured schema stores answer",
		Flags: append([]cli.Flag{e.redisFlag()}, e.storeFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			var errs []error

			if cfg := storeConfig(cmd); cfg.DSN != "" {
				st, err := e.openStore(ctx, cfg)
				if err == nil {
					err = st.health(ctx)
					st.close()
				}
				errs = append(errs, report(e, "store", err))
			}

			if url := cmd.String("redis-url"); url != "" {
				client, err := e.openRedis(ctx, url)
				if err == nil {
					err = e.redisHealth(ctx, client)
					_ = client.Close()
				}
				errs = append(errs, report(e, "redis", err))
			}

			if len(errs) == 0 {
				return errNoSchemaSource
			}
			if err := errors.Join(errs...); err != nil {
				e.log.WarnContext(ctx, "schema stores are unhealthy", logger.Errors(errs...))
				return err
			}
			return nil
		},
	}
}

func report(e *environment, name string, err error) error {
	if err != nil {
		fmt.Fprintf(e.stdout, "%s: %v\n", name, err)
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(e.stdout, "%s: ok\n", name)
	return nil
}
