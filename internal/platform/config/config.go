package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process-level configuration so main stays lean. Values come
// from environment variables with development-friendly defaults.
type Server struct {
	Addr            string        `env:"MATRIX_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"MATRIX_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"http://localhost:9090"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"10s"`

	// OTELEndpoint enables OTLP trace export when set; empty disables tracing.
	OTELEndpoint string `env:"OTEL_ENDPOINT"`

	Redis RedisConfig `envPrefix:"REDIS_"`

	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	AuditTopic   string   `env:"AUDIT_TOPIC" envDefault:"matrix.audit"`

	PostgresDSN string `env:"POSTGRES_DSN"`
}

// RedisConfig configures the optional snapshot cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	SnapshotTTL  time.Duration `env:"SNAPSHOT_TTL" envDefault:"5m"`
}

// FromEnv builds a Server config from environment variables.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
