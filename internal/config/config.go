package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StoreDriverSQLite = "sqlite"
	StoreDriverRedis  = "redis"
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"dev"`
	Port      string `envconfig:"PORT" default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBPath      string `envconfig:"DB_PATH" default:"./dev.db"`
	StoreDriver string `envconfig:"STORE_DRIVER" default:"sqlite"`
	RedisURL    string `envconfig:"REDIS_URL"`

	PricingConfigPath string  `envconfig:"PRICING_CONFIG_PATH"`
	MeasurementMinCM  float64 `envconfig:"MEASUREMENT_MIN_CM" default:"0"`
	MeasurementMaxCM  float64 `envconfig:"MEASUREMENT_MAX_CM" default:"200"`

	// RetentionDays bounds how long saved quotes are kept; 0 keeps them forever.
	RetentionDays int `envconfig:"QUOTE_RETENTION_DAYS" default:"30"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
}

// Load reads .env (best effort) and the process environment into a Config.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. Variables already present in
// the environment are never overwritten by the file.
func LoadFrom(dotenvPath string) (Config, error) {
	// Production should use real env injection; a missing file is fine.
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv %s: %w", dotenvPath, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	if cfg.AdminEmail == "" {
		log.Print("warning: ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		log.Print("warning: ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		log.Print("warning: SESSION_SECRET is not set, api writes are unauthenticated")
	}

	return cfg, nil
}

// IsDev reports whether the app runs in the development environment.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, AppEnvDev)
}

// Retention returns the quote retention window, or 0 when purging is off.
func (c Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

func (c Config) validate() error {
	switch strings.ToLower(c.StoreDriver) {
	case StoreDriverSQLite:
	case StoreDriverRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when STORE_DRIVER=%s", StoreDriverRedis)
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", StoreDriverSQLite, StoreDriverRedis, c.StoreDriver)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("QUOTE_RETENTION_DAYS must not be negative, got %d", c.RetentionDays)
	}
	if c.MeasurementMaxCM <= c.MeasurementMinCM {
		return fmt.Errorf("MEASUREMENT_MAX_CM (%v) must be greater than MEASUREMENT_MIN_CM (%v)", c.MeasurementMaxCM, c.MeasurementMinCM)
	}
	return nil
}
