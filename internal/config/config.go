package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/random"
)

// Duration lets TOML files use strings such as "90m"
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Config struct {
	Port        int    `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	AutoMigrate bool   `toml:"auto_migrate"`

	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Jobs     JobsConfig     `toml:"jobs"`
	Database DatabaseConfig `toml:"database"`
}

type AuthConfig struct {
	JWTSecret         string `toml:"jwt_secret"`
	JWKSURL           string `toml:"jwks_url"`
	AccessTTLSeconds  int    `toml:"access_ttl_seconds"`
	RefreshTTLSeconds int    `toml:"refresh_ttl_seconds"`

	// Seeded on startup when no user with AdminEmail exists
	AdminEmail    string `toml:"admin_email"`
	AdminPassword string `toml:"admin_password"`
}

// RedisConfig with an empty Addr selects the in-process cache
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MinioConfig with an empty Endpoint disables transaction attachments
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

type JobsConfig struct {
	Enabled                bool     `toml:"enabled"`
	LowStockInterval       Duration `toml:"low_stock_interval"`
	ReconciliationInterval Duration `toml:"reconciliation_interval"`
	DashboardWarmInterval  Duration `toml:"dashboard_warm_interval"`
}

type DatabaseConfig struct {
	MaxConns int32 `toml:"max_conns"`
	MinConns int32 `toml:"min_conns"`
}

func defaults() *Config {
	return &Config{
		Port:        8080,
		AutoMigrate: true,
		Auth: AuthConfig{
			AccessTTLSeconds:  15 * 60,
			RefreshTTLSeconds: 7 * 24 * 3600,
		},
		Minio: MinioConfig{Bucket: "agroledger-attachments", Region: "us-east-1"},
		Jobs: JobsConfig{
			Enabled:                true,
			LowStockInterval:       Duration{time.Hour},
			ReconciliationInterval: Duration{24 * time.Hour},
			DashboardWarmInterval:  Duration{5 * time.Minute},
		},
		Database: DatabaseConfig{MaxConns: 10},
	}
}

// Load reads .env, then the optional TOML file named by CONFIG_FILE, then
// environment variables. Later sources win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("WARN: could not read .env: %v", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Auth.JWKSURL, "JWKS_URL")
	setString(&c.Auth.AdminEmail, "ADMIN_EMAIL")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Minio.Endpoint, "MINIO_ENDPOINT")
	setString(&c.Minio.AccessKey, "MINIO_ACCESS_KEY")
	setString(&c.Minio.SecretKey, "MINIO_SECRET_KEY")
	setString(&c.Minio.Region, "MINIO_REGION")
	setString(&c.Minio.Bucket, "ATTACHMENT_BUCKET")

	for _, f := range []func() error{
		func() error { return setInt(&c.Port, "PORT") },
		func() error { return setInt(&c.Redis.DB, "REDIS_DB") },
		func() error { return setInt(&c.Auth.AccessTTLSeconds, "ACCESS_TOKEN_TTL") },
		func() error { return setInt(&c.Auth.RefreshTTLSeconds, "REFRESH_TOKEN_TTL") },
		func() error { return setBool(&c.AutoMigrate, "AUTO_MIGRATE") },
		func() error { return setBool(&c.Minio.UseSSL, "MINIO_USE_SSL") },
		func() error { return setBool(&c.Jobs.Enabled, "JOBS_ENABLED") },
		func() error { return setDuration(&c.Jobs.LowStockInterval, "LOW_STOCK_INTERVAL") },
		func() error { return setDuration(&c.Jobs.ReconciliationInterval, "RECONCILE_INTERVAL") },
		func() error { return setDuration(&c.Jobs.DashboardWarmInterval, "DASHBOARD_WARM_INTERVAL") },
	} {
		if err = f(); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		return fmt.Errorf("%s must be a duration such as 1h or 30m: %w", key, err)
	}
	return nil
}
