// Package config loads runtime settings from config.yaml, .env and HOUSEPRICE_* variables.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/YuminosukeSato/houseprice/linear"
	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// EnvPrefix is prepended to every environment variable, e.g. HOUSEPRICE_MODEL_SEED.
const EnvPrefix = "HOUSEPRICE"

// Config holds the full application configuration.
type Config struct {
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
}

// ModelConfig controls training.
type ModelConfig struct {
	Seed     uint64  `yaml:"seed" mapstructure:"seed"`
	Samples  int     `yaml:"samples" mapstructure:"samples"`
	TestSize float64 `yaml:"test_size" mapstructure:"test_size"`
	Solver   string  `yaml:"solver" mapstructure:"solver"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port                int      `yaml:"port" mapstructure:"port"`
	CORSOrigins         []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	RateLimit           float64  `yaml:"rate_limit" mapstructure:"rate_limit"`
	RateBurst           int      `yaml:"rate_burst" mapstructure:"rate_burst"`
	ShutdownTimeoutSecs int      `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// StoreConfig configures where served predictions are recorded.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	DSN    string `yaml:"dsn" mapstructure:"dsn"`
}

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewViper returns a viper instance with defaults, the optional config.yaml in
// the working directory and environment lookup set up. Callers may bind flags
// to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("model.seed", 42)
	v.SetDefault("model.samples", 5000)
	v.SetDefault("model.test_size", 0.2)
	v.SetDefault("model.solver", string(linear.SolverQR))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.shutdown_timeout_secs", 10)
	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.dsn", "")

	return v
}

// Load reads .env (if present), the config file (if present) and the
// environment into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = NewViper()
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "config: read .env")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "config: unmarshal")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the pipeline or server cannot run with.
func (c *Config) Validate() error {
	if c.Model.Samples <= 0 {
		return errors.NewValidationError("model.samples", "must be positive", c.Model.Samples)
	}
	if !(c.Model.TestSize > 0 && c.Model.TestSize < 1) {
		return errors.NewValidationError("model.test_size", "must be in (0, 1)", c.Model.TestSize)
	}
	if _, err := linear.ParseSolver(c.Model.Solver); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console", "text":
	default:
		return errors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewValidationError("server.port", "must be in [0, 65535]", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return errors.NewValidationError("server.rate_limit", "must not be negative", c.Server.RateLimit)
	}
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Store.DSN == "" {
			return errors.NewValidationError("store.dsn", "is required for driver "+c.Store.Driver, "")
		}
	default:
		return errors.NewValidationError("store.driver", "must be memory, sqlite or postgres", c.Store.Driver)
	}
	return nil
}
