package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"PG_CONN_URL"`
	MaxOpenConns      int32         `env:"PG_MAX_OPEN_CONNS" envDefault:"4"`
	MaxIdleConns      int32         `env:"PG_MAX_IDLE_CONNS" envDefault:"1"`
	HealthCheckPeriod time.Duration `env:"PG_HEALTHCHECK_PERIOD" envDefault:"1m"`
	MaxConnIdleTime   time.Duration `env:"PG_MAX_CONN_IDLE_TIME" envDefault:"10m"`
	MaxConnLifetime   time.Duration `env:"PG_MAX_CONN_LIFETIME" envDefault:"30m"`

	RetryAttempts int           `env:"PG_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"PG_RETRY_INTERVAL" envDefault:"2s"` // grows linearly with each attempt
	HealthTimeout time.Duration `env:"PG_HEALTH_TIMEOUT" envDefault:"5s"`
}
