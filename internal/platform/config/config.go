package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Database drivers accepted by DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string `env:"STARGATE_ADDR" envDefault:":8080"`
	Environment string `env:"STARGATE_ENV" envDefault:"development"`
	SeedOnStart bool   `env:"SEED_ON_START" envDefault:"false"`
}

// Database selects and configures the record store.
type Database struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"sqlite"`
	URL             string        `env:"DATABASE_URL"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"data/starbase.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the projection cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka configures the audit sink. No brokers means no Kafka sink. The breaker
// skips Kafka for BreakerCooldown after BreakerThreshold consecutive failures.
type Kafka struct {
	Brokers          []string      `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic       string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"stargate.audit"`
	QueueSize        int           `env:"KAFKA_AUDIT_QUEUE_SIZE" envDefault:"1024"`
	BreakerThreshold int           `env:"KAFKA_BREAKER_THRESHOLD" envDefault:"5"`
	BreakerCooldown  time.Duration `env:"KAFKA_BREAKER_COOLDOWN" envDefault:"30s"`
}

// Observability configures logs and traces.
type Observability struct {
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"json"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Config is the full process configuration.
type Config struct {
	Server        Server
	Database      Database
	Redis         RedisConfig
	Kafka         Kafka
	Observability Observability
}

// FromEnv builds the configuration from environment variables so main stays lean.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects combinations the process cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required when DB_DRIVER=%s", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Redis.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in the development
// environment, where 500 responses carry error detail.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Server.Environment, "development")
}
