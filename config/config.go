package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds every setting read from the environment (and an optional .env).
type Config struct {
	HTTPPort   string `envconfig:"HTTP_PORT" default:"8080"`
	GinMode    string `envconfig:"GIN_MODE" default:"debug"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	CORSOrigin string `envconfig:"CORS_ORIGIN"`

	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	DBURL       string `envconfig:"DB_URL"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	RedisAddr      string        `envconfig:"REDIS_ADDR"`
	RedisPassword  string        `envconfig:"REDIS_PASSWORD"`
	EditionLockTTL time.Duration `envconfig:"EDITION_LOCK_TTL" default:"10s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket    string `envconfig:"S3_BUCKET"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`

	PageNoMax         int    `envconfig:"PAGE_NO_MAX" default:"65535"`
	StaleTargetPolicy string `envconfig:"STALE_TARGET_POLICY" default:"keep"`
	BulkDeleteMax     int    `envconfig:"BULK_DELETE_MAX" default:"200"`
	AuditSchedule     string `envconfig:"AUDIT_SCHEDULE" default:"@every 1h"`
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBURL == "" {
			return errors.New("DB_URL is required when STORE_DRIVER=postgres")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StaleTargetPolicy != "keep" && c.StaleTargetPolicy != "clear" {
		return fmt.Errorf("STALE_TARGET_POLICY must be keep or clear, got %q", c.StaleTargetPolicy)
	}
	if c.PageNoMax < 2 {
		return fmt.Errorf("PAGE_NO_MAX must be at least 2, got %d", c.PageNoMax)
	}
	if c.BulkDeleteMax < 1 {
		return fmt.Errorf("BULK_DELETE_MAX must be positive, got %d", c.BulkDeleteMax)
	}
	return nil
}

// StorageEnabled reports whether page images live in an S3 bucket we may delete from.
func (c *Config) StorageEnabled() bool {
	return c.S3Bucket != ""
}
