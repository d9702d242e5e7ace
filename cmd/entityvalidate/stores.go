package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/pg"
	"github.com/dmitrymomot/entityvalidate/pkg/redis"
	"github.com/dmitrymomot/entityvalidate/pkg/schema"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

var errNoSchemaSource = errors.New("no schema source: use --schema, --db-dsn or --redis-url")

// store is an open schema database.
type store struct {
	db     *sql.DB
	driver string
	health func(context.Context) error
	close  func()
}

func (e *environment) openStore(ctx context.Context, cfg schema.SQLConfig) (*store, error) {
	switch cfg.Driver {
	case schema.DriverPgx:
		pgCfg := e.settings.Postgres
		pgCfg.ConnectionString = cfg.DSN
		pool, err := pg.Connect(ctx, pgCfg)
		if err != nil {
			return nil, err
		}
		db := pg.OpenDB(pool)
		return &store{
			db:     db,
			driver: cfg.Driver,
			health: pg.Healthcheck(pool, pgCfg.HealthTimeout),
			close: func() {
				_ = db.Close()
				pool.Close()
			},
		}, nil

	case schema.DriverSQLite:
		db, err := sql.Open(schema.DriverSQLite, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &store{
			db:     db,
			driver: cfg.Driver,
			health: db.PingContext,
			close:  func() { _ = db.Close() },
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", schema.ErrUnsupportedDriver, cfg.Driver)
}

func (e *environment) redisHealth(ctx context.Context, client *goredis.Client) error {
	return redis.Healthcheck(client, e.settings.Redis.HealthTimeout)(ctx)
}

func (e *environment) openRedis(ctx context.Context, url string) (*goredis.Client, error) {
	cfg := e.settings.Redis
	cfg.ConnectionURL = url
	return redis.Connect(ctx, cfg)
}

// provider assembles the schema provider chain for check:
// YAML file or SQL store, optionally behind Redis, always behind an LRU.
func (e *environment) provider(ctx context.Context, cmd *cli.Command) (validator.Metadata, func(), error) {
	var (
		base    validator.Metadata
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg := storeConfig(cmd); {
	case cmd.String("schema") != "":
		static, err := schema.Load(cmd.String("schema"))
		if err != nil {
			return nil, closeAll, err
		}
		base = static

	case cfg.DSN != "":
		st, err := e.openStore(ctx, cfg)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, st.close)
		sqlProvider, err := schema.NewSQLForDriver(st.db, st.driver, schema.WithTable(cfg.Table))
		if err != nil {
			return nil, closeAll, err
		}
		base = sqlProvider
	}

	if url := cmd.String("redis-url"); url != "" {
		client, err := e.openRedis(ctx, url)
		if err != nil {
			return nil, closeAll, err
		}
		closers = append(closers, func() { _ = client.Close() })

		opts := []schema.RedisOption{
			schema.WithRedisLogger(e.log.With(logger.Component("schema.redis"))),
			schema.WithRedisTTL(cmd.Duration("redis-ttl")),
		}
		if base != nil {
			opts = append(opts, schema.WithRedisFallback(base))
		}
		base = schema.NewRedis(client, opts...)
	}

	if base == nil {
		return nil, closeAll, errNoSchemaSource
	}
	return schema.NewCached(base, 64, 5*time.Minute), closeAll, nil
}
