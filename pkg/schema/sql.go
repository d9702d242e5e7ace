package schema

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// DefaultTable is the table created by Migrate.
const DefaultTable = "field_instances"

var fieldColumns = []string{
	"field_name",
	"property",
	"label",
	"required",
	"preprocessors",
	"validators",
	"type_descriptor",
	"settings",
}

// SQLConfig selects the database holding the schema store.
type SQLConfig struct {
	Driver string `env:"SCHEMA_DB_DRIVER" envDefault:"sqlite"`
	DSN    string `env:"SCHEMA_DB_DSN"`
	Table  string `env:"SCHEMA_DB_TABLE" envDefault:"field_instances"`
}

// SQL reads schemas from the field_instances table.
type SQL struct {
	db      *sql.DB
	table   string
	builder sq.StatementBuilderType
}

// SQLOption configures an SQL provider.
type SQLOption func(*SQL)

// WithTable overrides DefaultTable.
func WithTable(table string) SQLOption {
	return func(s *SQL) {
		if table != "" {
			s.table = table
		}
	}
}

// WithPlaceholder sets the bind parameter style; the default is "?".
func WithPlaceholder(f sq.PlaceholderFormat) SQLOption {
	return func(s *SQL) {
		if f != nil {
			s.builder = s.builder.PlaceholderFormat(f)
		}
	}
}

// NewSQL creates a provider over db.
func NewSQL(db *sql.DB, opts ...SQLOption) *SQL {
	s := &SQL{
		db:      db,
		table:   DefaultTable,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Question),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSQLForDriver creates a provider using the placeholder style of driver.
func NewSQLForDriver(db *sql.DB, driver string, opts ...SQLOption) (*SQL, error) {
	_, placeholder, err := dialect(driver)
	if err != nil {
		return nil, err
	}
	return NewSQL(db, append([]SQLOption{WithPlaceholder(placeholder)}, opts...)...), nil
}

// FieldsInfo returns the bundle's fields ordered by weight.
func (s *SQL) FieldsInfo(ctx context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	query, args, err := s.selectFields(entityType, bundle)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	defer rows.Close()

	var out []validator.FieldSpec
	for rows.Next() {
		spec, err := scanField(rows)
		if err != nil {
			return nil, errors.Join(ErrQueryFailed, err)
		}
		out = append(out, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

// Save replaces the stored fields of a bundle. Field order becomes the weight.
func (s *SQL) Save(ctx context.Context, entityType, bundle string, specs []validator.FieldSpec) error {
	fields := make([]Field, 0, len(specs))
	for _, spec := range specs {
		fields = append(fields, FieldFromSpec(spec))
	}
	if _, err := validateFields(entityType, bundle, fields); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	defer func() { _ = tx.Rollback() }()

	del, args, err := s.builder.Delete(s.table).
		Where(sq.Eq{"entity_type": entityType, "bundle": bundle}).
		ToSql()
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if _, err := tx.ExecContext(ctx, del, args...); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}

	if len(fields) > 0 {
		insert := s.builder.Insert(s.table).
			Columns(append([]string{"entity_type", "bundle", "weight"}, fieldColumns...)...)
		for i, f := range fields {
			values, err := fieldValues(f)
			if err != nil {
				return errors.Join(ErrSaveFailed, err)
			}
			insert = insert.Values(append([]any{entityType, bundle, i}, values...)...)
		}

		query, args, err := insert.ToSql()
		if err != nil {
			return errors.Join(ErrSaveFailed, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Join(ErrSaveFailed, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Import saves every schema of src.
func (s *SQL) Import(ctx context.Context, src *Static) error {
	return src.Each(func(entityType, bundle string, specs []validator.FieldSpec) error {
		return s.Save(ctx, entityType, bundle, specs)
	})
}

func (s *SQL) selectFields(entityType, bundle string) (string, []any, error) {
	return s.builder.Select(fieldColumns...).
		From(s.table).
		Where(sq.Eq{"entity_type": entityType, "bundle": bundle}).
		OrderBy("weight", "field_name").
		ToSql()
}

func scanField(rows *sql.Rows) (validator.FieldSpec, error) {
	var (
		f                                  Field
		preprocessors, validators, setting string
	)
	if err := rows.Scan(
		&f.Name,
		&f.Property,
		&f.Label,
		&f.Required,
		&preprocessors,
		&validators,
		&f.Type,
		&setting,
	); err != nil {
		return validator.FieldSpec{}, err
	}

	if err := decodeColumn("preprocessors", preprocessors, &f.Preprocessors); err != nil {
		return validator.FieldSpec{}, err
	}
	if err := decodeColumn("validators", validators, &f.Validators); err != nil {
		return validator.FieldSpec{}, err
	}
	if err := decodeColumn("settings", setting, &f.Settings); err != nil {
		return validator.FieldSpec{}, err
	}
	return f.Spec(), nil
}

func fieldValues(f Field) ([]any, error) {
	preprocessors, err := encodeColumn(f.Preprocessors, "[]")
	if err != nil {
		return nil, err
	}
	validators, err := encodeColumn(f.Validators, "[]")
	if err != nil {
		return nil, err
	}
	settings, err := encodeColumn(f.Settings, "{}")
	if err != nil {
		return nil, err
	}
	return []any{f.Name, f.Property, f.Label, f.Required, preprocessors, validators, f.Type, settings}, nil
}

func encodeColumn[T any](v T, empty string) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(data) == "null" {
		return empty, nil
	}
	return string(data), nil
}

// decodeColumn leaves dst nil for empty values.
func decodeColumn(name, raw string, dst any) error {
	switch raw {
	case "", "null", "[]", "{}":
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("column %s: %w", name, err)
	}
	return nil
}
