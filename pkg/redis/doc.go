// Package redis connects to the Redis server that backs the shared schema store.
//
// Connect parses a redis:// URL, pings the server and retries until it answers
// or the attempts run out. Healthcheck wraps a ping for readiness probes.
//
//	cfg, err := config.Load[redis.Config]()
//	client, err := redis.Connect(ctx, cfg)
//	provider := schema.NewRedis(client, schema.WithRedisFallback(sqlProvider))
package redis
