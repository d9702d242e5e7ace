package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/entityvalidate/pkg/config"
	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/metrics"
	"github.com/dmitrymomot/entityvalidate/pkg/pg"
	"github.com/dmitrymomot/entityvalidate/pkg/redis"
	"github.com/dmitrymomot/entityvalidate/pkg/schema"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// errRecordsInvalid is returned by check when at least one record failed.
var errRecordsInvalid = errors.New("one or more records are invalid")

// settings are the environment defaults of every command.
type settings struct {
	Logger    logger.Config
	Validator validator.Config
	Store     schema.SQLConfig
	Redis     redis.Config
	Postgres  pg.Config
	Metrics   metrics.Config
}

func loadSettings() (settings, error) {
	files := config.WithEnvFiles(".env")

	var (
		s   settings
		err error
	)
	if s.Logger, err = config.Load[logger.Config](files); err != nil {
		return s, err
	}
	if s.Validator, err = config.Load[validator.Config](files); err != nil {
		return s, err
	}
	if s.Store, err = config.Load[schema.SQLConfig](files); err != nil {
		return s, err
	}
	if s.Redis, err = config.Load[redis.Config](files); err != nil {
		return s, err
	}
	if s.Postgres, err = config.Load[pg.Config](files); err != nil {
		return s, err
	}
	if s.Metrics, err = config.Load[metrics.Config](files); err != nil {
		return s, err
	}
	return s, nil
}

// newApp builds the command tree with defaults taken from the environment.
func newApp(stdin io.Reader, stdout, stderr io.Writer) (*cli.Command, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return buildApp(s, stdin, stdout, stderr), nil
}

func buildApp(s settings, stdin io.Reader, stdout, stderr io.Writer) *cli.Command {
	log := logger.New(logger.FromConfig(s.Logger), logger.WithOutput(stderr))
	env := &environment{
		settings: s,
		stdin:    stdin,
		stdout:   stdout,
		log:      log,
	}

	return &cli.Command{
		Name:      "entityvalidate",
		Usage:     "validate records against entity schemas",
		Writer:    stdout,
		ErrWriter: stderr,
		// Exit codes are decided by main.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
		Commands: []*cli.Command{
			env.checkCommand(),
			env.watchCommand(),
			env.migrateCommand(),
			env.importCommand(),
			env.rulesCommand(),
			env.healthCommand(),
		},
	}
}

// environment carries what every command needs.
type environment struct {
	settings settings
	stdin    io.Reader
	stdout   io.Writer
	log      *slog.Logger
}

func (e *environment) storeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "db-driver",
			Value: e.settings.Store.Driver,
			Usage: "schema store driver: sqlite or pgx",
		},
		&cli.StringFlag{
			Name:  "db-dsn",
			Value: e.settings.Store.DSN,
			Usage: "schema store data source name",
		},
		&cli.StringFlag{
			Name:  "db-table",
			Value: e.settings.Store.Table,
			Usage: "schema store table",
		},
	}
}

func (e *environment) redisFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "redis-url",
		Usage: "shared schema store, e.g. redis://localhost:6379/0",
	}
}

func storeConfig(cmd *cli.Command) schema.SQLConfig {
	return schema.SQLConfig{
		Driver: cmd.String("db-driver"),
		DSN:    cmd.String("db-dsn"),
		Table:  cmd.String("db-table"),
	}
}
