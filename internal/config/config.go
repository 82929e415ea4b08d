package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// insecureDevKey signs tokens when DEBUG is on and no SECRET_KEY was given.
const insecureDevKey = "mestakip-insecure-development-key"

type Config struct {
	Debug       bool   `envconfig:"DEBUG"        default:"false"`
	SecretKey   string `envconfig:"SECRET_KEY"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	Host           string        `envconfig:"HOST"            default:"0.0.0.0"`
	Port           string        `envconfig:"PORT"            default:"8000"`
	Workers        int           `envconfig:"WORKERS"         default:"3"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"120s"`
	QueueSize      int           `envconfig:"QUEUE_SIZE"      default:"1000"`
	GRPCPort       string        `envconfig:"GRPC_PORT"       default:":50051"`
	RedisURL       string        `envconfig:"REDIS_URL"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone string `envconfig:"TIME_ZONE" default:"Europe/Istanbul"`

	AdminUsername string `envconfig:"ADMIN_USERNAME" default:"admin"`
	AdminEmail    string `envconfig:"ADMIN_EMAIL"    default:"admin@mestakip.com"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`

	TokenTTL   time.Duration `envconfig:"TOKEN_TTL"   default:"24h"`
	LoginRate  float64       `envconfig:"LOGIN_RATE"  default:"5"`
	LoginBurst int           `envconfig:"LOGIN_BURST" default:"10"`

	// DotenvLoaded reports whether a .env file was read.
	DotenvLoaded bool `ignored:"true"`
}

// Load reads an optional .env file from the working directory, then the
// process environment, and validates the result.
func Load() (*Config, error) {
	var cfg Config

	err := godotenv.Load()
	switch {
	case err == nil:
		cfg.DotenvLoaded = true
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.New("configuration error: DATABASE_URL is not set")
	}
	if c.SecretKey == "" {
		if !c.Debug {
			return errors.New("configuration error: SECRET_KEY is not set (required when DEBUG is off)")
		}
		c.SecretKey = insecureDevKey
	}
	if c.Workers < 1 {
		return fmt.Errorf("configuration error: WORKERS must be at least 1, got %d", c.Workers)
	}
	if c.QueueSize < 1 {
		return fmt.Errorf("configuration error: QUEUE_SIZE must be at least 1, got %d", c.QueueSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("configuration error: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// HTTPAddr is the listen address of the HTTP server, 0.0.0.0:8000 by default.
func (c *Config) HTTPAddr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// Location resolves TIME_ZONE, falling back to UTC when it is unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
