// Package config provides configuration loading, defaults, and validation
// for the PhytoTrait-Intelligence platform.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/infrastructure/monitoring/logging"
)

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig configures the PostgreSQL connection pool.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConns        int           `mapstructure:"max_conns"`
	MinConns        int           `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	MigrationPath   string        `mapstructure:"migration_path"`
}

// DSN renders the pgx connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode)
}

// RedisConfig configures the optional Redis enhancement cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig configures the asynchronous enhancement pipeline.
type KafkaConfig struct {
	Brokers         []string `mapstructure:"brokers"`
	GroupID         string   `mapstructure:"group_id"`
	AutoOffsetReset string   `mapstructure:"auto_offset_reset"` // "earliest" | "latest"
	ProducerRetries int      `mapstructure:"producer_retries"`
	BatchSize       int      `mapstructure:"batch_size"`
}

// GlossarySource selects where the botanical vocabulary is loaded from.
type GlossarySource string

const (
	GlossarySourceFile     GlossarySource = "file"
	GlossarySourcePostgres GlossarySource = "postgres"
)

// GlossaryConfig configures vocabulary loading.
type GlossaryConfig struct {
	Source GlossarySource `mapstructure:"source"`
	Path   string         `mapstructure:"path"` // YAML corpus path when source=file
}

// CacheBackend selects the enhancement cache implementation.
type CacheBackend string

const (
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// EngineConfig configures the trait inference engine and its cache.
type EngineConfig struct {
	MaxTextLength int           `mapstructure:"max_text_length"`
	CacheEnabled  bool          `mapstructure:"cache_enabled"`
	CacheBackend  CacheBackend  `mapstructure:"cache_backend"`
	CacheSize     int           `mapstructure:"cache_size"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"` // redis backend only
}

// BatchConfig configures concurrent batch processing.
type BatchConfig struct {
	MaxConcurrency int           `mapstructure:"max_concurrency"`
	ItemTimeout    time.Duration `mapstructure:"item_timeout"`
}

// MetricsConfig configures the Prometheus surface.
type MetricsConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Namespace            string `mapstructure:"namespace"`
	EnableProcessMetrics bool   `mapstructure:"enable_process_metrics"`
	EnableGoMetrics      bool   `mapstructure:"enable_go_metrics"`
}

// Config is the root configuration for every binary.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	Glossary GlossaryConfig    `mapstructure:"glossary"`
	Engine   EngineConfig      `mapstructure:"engine"`
	Batch    BatchConfig       `mapstructure:"batch"`
	Logging  logging.LogConfig `mapstructure:"logging"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
}

// Validate checks cross-field consistency after defaults are applied.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	switch c.Glossary.Source {
	case GlossarySourceFile:
		if c.Glossary.Path == "" {
			return fmt.Errorf("config: glossary.path is required when glossary.source is file")
		}
	case GlossarySourcePostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when glossary.source is postgres")
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when glossary.source is postgres")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when glossary.source is postgres")
		}
	default:
		return fmt.Errorf("config: glossary.source %q is invalid; expected file|postgres", c.Glossary.Source)
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}

	if c.Engine.CacheEnabled {
		switch c.Engine.CacheBackend {
		case CacheBackendMemory, CacheBackendRedis:
		default:
			return fmt.Errorf("config: engine.cache_backend %q is invalid; expected memory|redis", c.Engine.CacheBackend)
		}
		if c.Engine.CacheBackend == CacheBackendRedis && c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when engine.cache_backend is redis")
		}
		if c.Engine.CacheSize < 1 {
			return fmt.Errorf("config: engine.cache_size must be positive, got %d", c.Engine.CacheSize)
		}
	}

	if c.Batch.MaxConcurrency < 1 {
		return fmt.Errorf("config: batch.max_concurrency must be positive, got %d", c.Batch.MaxConcurrency)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	return nil
}
