package config

import (
	"time"

	"github.com/turtacn/PhytoTrait-Intelligence/internal/intelligence/trait_inference"
)

// Default value constants.
const (
	DefaultServerPort      = 8080
	DefaultServerMode      = "debug"
	DefaultShutdownTimeout = 15 * time.Second

	DefaultDBHost     = "localhost"
	DefaultDBPort     = 5432
	DefaultDBName     = "phytotrait"
	DefaultDBSSLMode  = "disable"
	DefaultDBMaxConns = 25

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisTTL       = 30 * time.Minute
	DefaultRedisKeyPrefix = "phytotrait:"

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "phytotrait-workers"

	DefaultGlossaryPath = "configs/glossary.yaml"

	DefaultBatchConcurrency = 4

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "phytotrait"
)

// ApplyDefaults fills every zero-value field in cfg with the platform
// default.  Fields already set by the caller are left unchanged so explicit
// configuration always wins.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = 4 << 20
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}

	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.BatchSize == 0 {
		cfg.Kafka.BatchSize = 100
	}

	if cfg.Glossary.Source == "" {
		cfg.Glossary.Source = GlossarySourceFile
	}
	if cfg.Glossary.Source == GlossarySourceFile && cfg.Glossary.Path == "" {
		cfg.Glossary.Path = DefaultGlossaryPath
	}

	if cfg.Engine.MaxTextLength == 0 {
		cfg.Engine.MaxTextLength = trait_inference.DefaultEngineConfig().MaxTextLength
	}
	if cfg.Engine.CacheBackend == "" {
		cfg.Engine.CacheBackend = CacheBackendMemory
	}
	if cfg.Engine.CacheSize == 0 {
		cfg.Engine.CacheSize = trait_inference.DefaultCacheSize
	}
	if cfg.Engine.CacheTTL == 0 {
		cfg.Engine.CacheTTL = DefaultRedisTTL
	}

	if cfg.Batch.MaxConcurrency == 0 {
		cfg.Batch.MaxConcurrency = DefaultBatchConcurrency
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
	if len(cfg.Logging.OutputPaths) == 0 {
		cfg.Logging.OutputPaths = []string{"stdout"}
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
}
