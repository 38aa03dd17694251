package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "SOCIALEXPLORE"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// RequestTimeout bounds a single request's storage work (collect, mark-read).
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // mysql | postgres | sqlite
	DSN             string        `mapstructure:"dsn"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type JWTConfig struct {
	AccessSecret string        `mapstructure:"access_secret"`
	AccessExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer       string        `mapstructure:"issuer"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.request_timeout", 5*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "socialexplore:socialexplore_dev@tcp(localhost:3306)/socialexplore_db?charset=utf8mb4&parseTime=True&loc=UTC")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_queries", false)

	v.SetDefault("jwt.access_secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", 24*time.Hour)
	v.SetDefault("jwt.issuer", "socialexplore")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", 60*time.Second)
}

// Load reads configuration from defaults, an optional YAML file at path and
// SOCIALEXPLORE_* environment variables, in increasing order of precedence.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn is required")
	}
	if c.JWT.AccessSecret == "" {
		return errors.New("jwt.access_secret is required")
	}
	if c.Server.Env == "production" && c.JWT.AccessSecret == "change-me-in-production" {
		return errors.New("jwt.access_secret must be set in production")
	}
	return nil
}
