// Package config loads the API configuration from the environment, optionally
// seeded from a .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env       string
	HTTP      HTTPConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Workers   WorkersConfig
	CacheTTL  time.Duration
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Env, validation.Required, validation.In(EnvDevelopment, EnvProduction, EnvTest)),
		validation.Field(&c.CacheTTL, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http: %w", err)
	}
	if err := c.DB.Validate(); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.JWT.Validate(); err != nil {
		return fmt.Errorf("jwt: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return c.Workers.Validate()
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

type HTTPConfig struct {
	Port        int
	FrontendURL string
}

func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.FrontendURL, validation.Required),
	)
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN builds a postgres URL understood by both the pgx and lib/pq drivers.
func (c *DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

func (c *DBConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In("pgx", "postgres")),
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required),
		validation.Field(&c.User, validation.Required),
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.SSLMode, validation.In("disable", "allow", "prefer", "require", "verify-ca", "verify-full")),
	)
}

// RedisConfig is optional: an empty Host disables caching and rate limiting.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *RedisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.When(c.Enabled(), validation.Required)),
		validation.Field(&c.DB, validation.Min(0), validation.Max(15)),
	)
}

type JWTConfig struct {
	Secret    string
	Issuer    string
	ExpiresIn time.Duration
}

func (c *JWTConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Secret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.ExpiresIn, validation.Required, validation.Min(time.Minute)),
	)
}

type RateLimitConfig struct {
	Limit     int
	AuthLimit int
	Window    time.Duration
}

func (c *RateLimitConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Limit, validation.Required, validation.Min(1)),
		validation.Field(&c.AuthLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Window, validation.Required, validation.Min(time.Second)),
	)
}

type WorkersConfig struct {
	FreezeSweepInterval time.Duration
}

func (c *WorkersConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.FreezeSweepInterval, validation.Required, validation.Min(time.Second)),
	)
}

// Load reads the given .env files (missing files are ignored), then the
// process environment, applies defaults and validates the result.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// FromEnv maps environment variables onto a Config without validating it.
func FromEnv() (*Config, error) {
	var p parser

	cfg := &Config{
		Env: getEnv("APP_ENV", EnvDevelopment),
		HTTP: HTTPConfig{
			Port:        p.int("PORT", 8080),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "pgx"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       p.int("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:    os.Getenv("JWT_SECRET"),
			Issuer:    getEnv("JWT_ISSUER", "aethernova"),
			ExpiresIn: p.duration("JWT_EXPIRES_IN", 7*24*time.Hour),
		},
		RateLimit: RateLimitConfig{
			Limit:     p.int("RATE_LIMIT", 100),
			AuthLimit: p.int("AUTH_RATE_LIMIT", 50),
			Window:    p.duration("RATE_LIMIT_WINDOW", 15*time.Minute),
		},
		Workers: WorkersConfig{
			FreezeSweepInterval: p.duration("FREEZE_SWEEP_INTERVAL", 10*time.Minute),
		},
		CacheTTL: p.duration("CACHE_TTL", 30*time.Minute),
	}

	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// parser keeps the first conversion error so FromEnv can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return v
}
