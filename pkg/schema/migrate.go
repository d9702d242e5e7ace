package schema

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
)

// Supported database/sql driver names.
const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// dialect returns the goose dialect and placeholder format of a driver.
func dialect(driver string) (goose.Dialect, sq.PlaceholderFormat, error) {
	switch driver {
	case DriverSQLite:
		return goose.DialectSQLite3, sq.Question, nil
	case DriverPgx:
		return goose.DialectPostgres, sq.Dollar, nil
	}
	return "", nil, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
}

// Migrate creates or upgrades the field_instances table.
// A nil log discards migration output.
func Migrate(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	d, _, err := dialect(driver)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	provider, err := goose.NewProvider(d, db, fsys)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return errors.Join(ErrMigrationFailed, err)
	}

	if log != nil {
		for _, r := range results {
			log.InfoContext(ctx, "schema migration applied",
				logger.Group("migration",
					slog.Int64("version", r.Source.Version),
					slog.String("path", r.Source.Path),
					logger.Duration(r.Duration),
				),
			)
		}
	}
	return nil
}
