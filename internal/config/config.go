package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"APP_ENV"`
	CORSOrigins string `mapstructure:"CORS_ORIGINS"`
	SentryDSN   string `mapstructure:"SENTRY_DSN"`

	// Database
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns int    `mapstructure:"DB_MAX_IDLE_CONNS"`

	// JWT
	JWTSecret        string        `mapstructure:"JWT_SECRET"`
	JWTIssuer        string        `mapstructure:"JWT_ISSUER"`
	JWTAccessExpiry  time.Duration `mapstructure:"JWT_ACCESS_EXPIRY"`
	JWTRefreshExpiry time.Duration `mapstructure:"JWT_REFRESH_EXPIRY"`

	// Logging
	LogRetentionDays int `mapstructure:"LOG_RETENTION_DAYS"`
}

var defaults = map[string]interface{}{
	"PORT":               "8080",
	"APP_ENV":            "development",
	"CORS_ORIGINS":       "*",
	"SENTRY_DSN":         "",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "postgres",
	"DB_PASSWORD":        "",
	"DB_NAME":            "sghss",
	"DB_SSLMODE":         "disable",
	"DB_MAX_OPEN_CONNS":  25,
	"DB_MAX_IDLE_CONNS":  10,
	"JWT_SECRET":         "",
	"JWT_ISSUER":         "sghss-api",
	"JWT_ACCESS_EXPIRY":  "1h",
	"JWT_REFRESH_EXPIRY": "168h",
	"LOG_RETENTION_DAYS": 30,
}

// Load reads configuration from the environment, falling back to a .env file
// in the working directory when one exists.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	for key, val := range defaults {
		v.SetDefault(key, val)
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	// A missing .env is fine; the environment is the primary source.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DBPassword == "" {
		return errors.New("DB_PASSWORD is required")
	}
	if c.JWTAccessExpiry <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRY must be positive, got %s", c.JWTAccessExpiry)
	}
	if c.JWTRefreshExpiry <= 0 {
		return fmt.Errorf("JWT_REFRESH_EXPIRY must be positive, got %s", c.JWTRefreshExpiry)
	}
	if c.LogRetentionDays <= 0 {
		c.LogRetentionDays = 30
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if _, err := strconv.Atoi(c.Port); err != nil {
		return c.Port
	}
	return ":" + c.Port
}
