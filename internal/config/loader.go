package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all platform settings.
const envPrefix = "PHYTO"

// newViper builds a pre-configured Viper instance with the platform's
// standard settings: YAML file type, PHYTO_ env prefix, automatic env
// binding, and a key replacer that maps "." to "_" so that nested keys like
// "database.host" resolve to "PHYTO_DATABASE_HOST".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// registerKeys declares every configuration key with a typed zero default.
// Viper only consults environment variables for keys it knows about, so
// without this step a purely env-driven deployment would silently ignore
// its PHYTO_* settings.
func registerKeys(v *viper.Viper) {
	zeros := map[string]interface{}{
		"server.port":             0,
		"server.mode":             "",
		"server.read_timeout":     time.Duration(0),
		"server.write_timeout":    time.Duration(0),
		"server.max_body_size":    int64(0),
		"server.shutdown_timeout": time.Duration(0),

		"database.host":               "",
		"database.port":               0,
		"database.user":               "",
		"database.password":           "",
		"database.db_name":            "",
		"database.ssl_mode":           "",
		"database.max_conns":          0,
		"database.min_conns":          0,
		"database.conn_max_lifetime":  time.Duration(0),
		"database.conn_max_idle_time": time.Duration(0),
		"database.migration_path":     "",

		"redis.addr":           "",
		"redis.password":       "",
		"redis.db":             0,
		"redis.pool_size":      0,
		"redis.min_idle_conns": 0,
		"redis.dial_timeout":   time.Duration(0),
		"redis.read_timeout":   time.Duration(0),
		"redis.write_timeout":  time.Duration(0),
		"redis.default_ttl":    time.Duration(0),
		"redis.key_prefix":     "",

		"kafka.brokers":           []string{},
		"kafka.group_id":          "",
		"kafka.auto_offset_reset": "",
		"kafka.producer_retries":  0,
		"kafka.batch_size":        0,

		"glossary.source": "",
		"glossary.path":   "",

		"engine.max_text_length": 0,
		"engine.cache_enabled":   false,
		"engine.cache_backend":   "",
		"engine.cache_size":      0,
		"engine.cache_ttl":       time.Duration(0),

		"batch.max_concurrency": 0,
		"batch.item_timeout":    time.Duration(0),

		"logging.level":              "",
		"logging.format":             "",
		"logging.output_paths":       []string{},
		"logging.error_output_paths": []string{},

		"metrics.enabled":                false,
		"metrics.namespace":              "",
		"metrics.enable_process_metrics": false,
		"metrics.enable_go_metrics":      false,
	}
	for key, zero := range zeros {
		v.SetDefault(key, zero)
	}
}

// Load reads the YAML file at configPath, merges any PHYTO_* environment
// variable overrides, applies platform defaults for unset fields, and
// validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from PHYTO_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised deployments.
//
// Environment variable naming convention:
//
//	PHYTO_<SECTION>_<FIELD>   e.g.  PHYTO_DATABASE_HOST, PHYTO_GLOSSARY_PATH
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified on disk.  It is intended for
// hot-reloading non-critical settings such as log level; callers decide
// which subset of changes is safe to apply at runtime.
//
// Watch is non-blocking; it starts a background goroutine managed by viper.
// A changed file that fails to parse or validate does not trigger onChange.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)

	// Initial read; errors are ignored here, callers should call Load first.
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad is a convenience wrapper around Load that panics on any error.
// Intended for main() where a config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
