package schema

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
	"github.com/dmitrymomot/entityvalidate/pkg/validator"
)

// DefaultRedisPrefix starts every schema key.
const DefaultRedisPrefix = "entityvalidate:schema:"

// RedisClient is the subset of *redis.Client used by the Redis provider.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Redis stores schemas as JSON documents in Redis.
// On a miss it asks the fallback provider, if any, and stores the answer.
type Redis struct {
	client   RedisClient
	prefix   string
	ttl      time.Duration
	fallback validator.Metadata
	logger   *slog.Logger
}

// RedisOption configures a Redis provider.
type RedisOption func(*Redis)

func WithRedisPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = prefix }
}

// WithRedisTTL sets how long stored schemas live; zero keeps them forever.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = ttl }
}

// WithRedisFallback sets the provider consulted on a miss.
func WithRedisFallback(m validator.Metadata) RedisOption {
	return func(r *Redis) { r.fallback = m }
}

func WithRedisLogger(l *slog.Logger) RedisOption {
	return func(r *Redis) {
		if l != nil {
			r.logger = l
		}
	}
}

func NewRedis(client RedisClient, opts ...RedisOption) *Redis {
	r := &Redis{
		client: client,
		prefix: DefaultRedisPrefix,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) FieldsInfo(ctx context.Context, entityType, bundle string) ([]validator.FieldSpec, error) {
	if err := checkEntityType(entityType); err != nil {
		return nil, err
	}
	data, err := r.client.Get(ctx, r.key(entityType, bundle)).Bytes()
	switch {
	case err == nil:
		var fields []Field
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, errors.Join(ErrFailedToParseDocument, err)
		}
		out := make([]validator.FieldSpec, 0, len(fields))
		for _, f := range fields {
			out = append(out, f.Spec())
		}
		return out, nil
	case !errors.Is(err, redis.Nil):
		return nil, errors.Join(ErrStoreUnavailable, err)
	case r.fallback == nil:
		return nil, nil
	}

	specs, err := r.fallback.FieldsInfo(ctx, entityType, bundle)
	if err != nil {
		return nil, err
	}
	if err := r.Save(ctx, entityType, bundle, specs); err != nil {
		r.logger.WarnContext(ctx, "failed to store schema in redis",
			logger.EntityType(entityType),
			logger.Bundle(bundle),
			logger.Error(err),
		)
	}
	return specs, nil
}

// Save stores the fields of a bundle.
func (r *Redis) Save(ctx context.Context, entityType, bundle string, specs []validator.FieldSpec) error {
	if err := checkEntityType(entityType); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	fields := make([]Field, 0, len(specs))
	for _, spec := range specs {
		fields = append(fields, FieldFromSpec(spec))
	}
	data, err := json.Marshal(fields)
	if err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	if err := r.client.Set(ctx, r.key(entityType, bundle), data, r.ttl).Err(); err != nil {
		return errors.Join(ErrSaveFailed, err)
	}
	return nil
}

// Invalidate deletes the stored fields of a bundle.
func (r *Redis) Invalidate(ctx context.Context, entityType, bundle string) error {
	if err := checkEntityType(entityType); err != nil {
		return err
	}
	if err := r.client.Del(ctx, r.key(entityType, bundle)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

func (r *Redis) key(entityType, bundle string) string {
	return r.prefix + Key{entityType, bundle}.String()
}
