// Package config loads the server and CLI settings.
//
// Precedence, lowest to highest:
//
//	built-in defaults → YAML file (optional) → MUSHROOM_* environment variables
//
// Keys are dotted in YAML and underscored in the environment, so
// storage.driver becomes MUSHROOM_STORAGE_DRIVER.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "MUSHROOM"

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// minSecretLength matches what auth.NewTokenService accepts.
const minSecretLength = 16

// Config is the full application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	Storage StorageConfig `mapstructure:"storage"`
	Session SessionConfig `mapstructure:"session"`
	Geocode GeocodeConfig `mapstructure:"geocode"`
	Seed    SeedConfig    `mapstructure:"seed"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn, error
}

// StorageConfig selects the durable store. Path is used by sqlite, DSN by
// postgres; memory keeps everything in an in-process SQLite database with no
// size cap and loses it on exit.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// SessionConfig controls session tokens and the in-memory session store.
type SessionConfig struct {
	Secret   string        `mapstructure:"secret"`
	Lifetime time.Duration `mapstructure:"lifetime"`
	Capacity int           `mapstructure:"capacity"`
}

type GeocodeConfig struct {
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type SeedConfig struct {
	DemoUsers bool `mapstructure:"demo_users"`
}

// Defaults returns the configuration used when nothing is set.
//
// The session secret has no usable default; Validate rejects an empty one.
func Defaults() Config {
	return Config{
		Server:  ServerConfig{Port: 8080},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{Driver: DriverSQLite, Path: "data/mushrooms.db"},
		Session: SessionConfig{Lifetime: 12 * time.Hour, Capacity: 10000},
		Geocode: GeocodeConfig{
			Enabled:   true,
			BaseURL:   "https://nominatim.openstreetmap.org",
			UserAgent: "mushroom-tracker/1.0",
			Timeout:   5 * time.Second,
		},
		Seed: SeedConfig{DemoUsers: true},
	}
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables are used. A path that does not exist
// is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default, otherwise AutomaticEnv never looks it up
	d := Defaults()
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("storage.driver", d.Storage.Driver)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.dsn", d.Storage.DSN)
	v.SetDefault("session.secret", d.Session.Secret)
	v.SetDefault("session.lifetime", d.Session.Lifetime)
	v.SetDefault("session.capacity", d.Session.Capacity)
	v.SetDefault("geocode.enabled", d.Geocode.Enabled)
	v.SetDefault("geocode.base_url", d.Geocode.BaseURL)
	v.SetDefault("geocode.user_agent", d.Geocode.UserAgent)
	v.SetDefault("geocode.timeout", d.Geocode.Timeout)
	v.SetDefault("seed.demo_users", d.Seed.DemoUsers)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d is out of range", c.Server.Port))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			errs = append(errs, errors.New("storage.path is required for the sqlite driver"))
		}
	case DriverPostgres:
		if c.Storage.DSN == "" {
			errs = append(errs, errors.New("storage.dsn is required for the postgres driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q is not one of sqlite, postgres, memory", c.Storage.Driver))
	}

	if len(c.Session.Secret) < minSecretLength {
		errs = append(errs, fmt.Errorf("session.secret must be at least %d characters (set %s_SESSION_SECRET)", minSecretLength, EnvPrefix))
	}
	if c.Session.Lifetime <= 0 {
		errs = append(errs, errors.New("session.lifetime must be positive"))
	}
	if c.Session.Capacity < 1 {
		errs = append(errs, errors.New("session.capacity must be at least 1"))
	}

	if c.Geocode.Enabled {
		if c.Geocode.BaseURL == "" {
			errs = append(errs, errors.New("geocode.base_url is required when geocoding is enabled"))
		}
		if c.Geocode.Timeout <= 0 {
			errs = append(errs, errors.New("geocode.timeout must be positive"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ParseLevel maps log.level to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level %q is not one of debug, info, warn, error", s)
	}
	return l, nil
}
