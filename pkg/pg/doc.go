// Package pg opens the PostgreSQL pool used as a schema store.
//
// Connect builds a pgx pool from Config and retries until the database
// answers. OpenDB exposes the pool through database/sql for the schema
// package's query builder and migrations.
//
//	pool, err := pg.Connect(ctx, cfg)
//	db := pg.OpenDB(pool)
//	err = schema.Migrate(ctx, db, schema.DriverPgx, logger)
package pg
