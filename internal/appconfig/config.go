package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is disirctl/disir-server's layered application configuration,
// adapted from the teacher's viper-based Config (internal/config/config.go):
// the same defaults-then-file-then-env layering, but describing the
// disir domain (registry storage, resolver cache, k8s loader, HTTP
// validation API) instead of an alerting pipeline.
type Config struct {
	Profile DeploymentProfile `mapstructure:"profile"`

	Registry RegistryConfig `mapstructure:"registry"`
	Resolver ResolverConfig `mapstructure:"resolver"`
	K8s      K8sConfig      `mapstructure:"k8s"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DeploymentProfile labels the deployment disir-server runs as. Validate
// checks that it is one of the values below and serve logs it; the
// storage backend is chosen by Registry.Backend and the resolver cache
// by the Resolver settings, independently of the profile.
type DeploymentProfile string

const (
	// ProfileLite labels a local development or CI deployment.
	ProfileLite DeploymentProfile = "lite"
	// ProfileStandard labels a production deployment (the default).
	ProfileStandard DeploymentProfile = "standard"
)

// RegistryConfig configures the Mold/Config document registry
// (registry/postgres, registry/sqlite).
type RegistryConfig struct {
	Backend         string        `mapstructure:"backend"` // "sqlite" or "postgres"
	SQLitePath      string        `mapstructure:"sqlite_path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int           `mapstructure:"max_connections"`
	MinConnections  int           `mapstructure:"min_connections"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
}

// ResolverConfig configures resolvercache, the LRU+Redis cache sitting
// in front of Default/Documentation version-window resolution.
type ResolverConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	LocalLRUSize    int           `mapstructure:"local_lru_size"`
	DefaultTTL      time.Duration `mapstructure:"default_ttl"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// K8sConfig configures k8sloader, which resolves disir Configs from
// ConfigMaps.
type K8sConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Namespace      string        `mapstructure:"namespace"`
	LabelSelector  string        `mapstructure:"label_selector"`
	ResyncInterval time.Duration `mapstructure:"resync_interval"`
}

// ServerConfig configures api, the HTTP validation service.
type ServerConfig struct {
	Port                    int           `mapstructure:"port"`
	Host                    string        `mapstructure:"host"`
	ReadTimeout             time.Duration `mapstructure:"read_timeout"`
	WriteTimeout            time.Duration `mapstructure:"write_timeout"`
	IdleTimeout             time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownTimeout time.Duration `mapstructure:"graceful_shutdown_timeout"`
	RateLimitPerSecond      float64       `mapstructure:"rate_limit_per_second"`
	RateLimitBurst          int           `mapstructure:"rate_limit_burst"`
}

// LogConfig configures pkg/disirlog.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig configures pkg/disirmetrics' HTTP exposition.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// Load reads configuration from defaults, then configPath (if non-empty
// and present), then environment variables, in that order of increasing
// precedence — the same layering as the teacher's LoadConfig.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("disir")

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profile", string(ProfileStandard))

	v.SetDefault("registry.backend", "postgres")
	v.SetDefault("registry.sqlite_path", "/data/disir-registry.db")
	v.SetDefault("registry.host", "localhost")
	v.SetDefault("registry.port", 5432)
	v.SetDefault("registry.database", "disir")
	v.SetDefault("registry.username", "disir")
	v.SetDefault("registry.password", "disir")
	v.SetDefault("registry.ssl_mode", "disable")
	v.SetDefault("registry.max_connections", 25)
	v.SetDefault("registry.min_connections", 5)
	v.SetDefault("registry.max_conn_lifetime", "1h")
	v.SetDefault("registry.max_conn_idle_time", "30m")
	v.SetDefault("registry.connect_timeout", "10s")
	v.SetDefault("registry.query_timeout", "30s")

	v.SetDefault("resolver.enabled", true)
	v.SetDefault("resolver.redis_addr", "localhost:6379")
	v.SetDefault("resolver.redis_db", 0)
	v.SetDefault("resolver.local_lru_size", 1024)
	v.SetDefault("resolver.default_ttl", "5m")
	v.SetDefault("resolver.dial_timeout", "5s")
	v.SetDefault("resolver.read_timeout", "3s")
	v.SetDefault("resolver.write_timeout", "3s")
	v.SetDefault("resolver.max_retries", 3)
	v.SetDefault("resolver.min_retry_backoff", "100ms")
	v.SetDefault("resolver.max_retry_backoff", "500ms")

	v.SetDefault("k8s.enabled", false)
	v.SetDefault("k8s.namespace", "default")
	v.SetDefault("k8s.resync_interval", "5m")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.graceful_shutdown_timeout", "30s")
	v.SetDefault("server.rate_limit_per_second", 50.0)
	v.SetDefault("server.rate_limit_burst", 100)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.port", 9090)
}

// Validate enforces the cross-field constraints the teacher's
// Config.Validate checked, narrowed to the fields disir actually has.
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileLite, ProfileStandard:
	default:
		return fmt.Errorf("invalid profile %q: must be %q or %q", c.Profile, ProfileLite, ProfileStandard)
	}

	switch c.Registry.Backend {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid registry.backend %q: must be \"sqlite\" or \"postgres\"", c.Registry.Backend)
	}

	if c.Registry.Backend == "postgres" {
		if c.Registry.Host == "" {
			return fmt.Errorf("registry.host is required for the postgres backend")
		}
		if c.Registry.Database == "" {
			return fmt.Errorf("registry.database is required for the postgres backend")
		}
	}
	if c.Registry.Backend == "sqlite" && c.Registry.SQLitePath == "" {
		return fmt.Errorf("registry.sqlite_path is required for the sqlite backend")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}

	return nil
}
