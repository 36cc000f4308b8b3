package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	Minio    MinioConfig    `toml:"minio"`
	Jobs     JobsConfig     `toml:"jobs"`
}

// ServerConfig contains the HTTP listener settings. RateLimit is requests per second per client IP;
// zero disables limiting.
type ServerConfig struct {
	Port      int `toml:"port"`
	RateLimit int `toml:"rate_limit"`
}

type DatabaseConfig struct {
	URL string `toml:"url"`
}

// RedisConfig contains the cache connection and entry lifetime
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	CacheTTLMinutes int    `toml:"cache_ttl_minutes"`
}

// MinioConfig contains object storage settings for product images
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// JobsConfig contains the background job intervals
type JobsConfig struct {
	LowStockThreshold   int `toml:"low_stock_threshold"`
	FacetRefreshMinutes int `toml:"facet_refresh_minutes"`
	StockAlertMinutes   int `toml:"stock_alert_minutes"`
}

func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLMinutes) * time.Minute
}

func (j JobsConfig) FacetRefreshInterval() time.Duration {
	return time.Duration(j.FacetRefreshMinutes) * time.Minute
}

func (j JobsConfig) StockAlertInterval() time.Duration {
	return time.Duration(j.StockAlertMinutes) * time.Minute
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, RateLimit: 20},
		Redis:  RedisConfig{Addr: "localhost:6379", CacheTTLMinutes: 15},
		Minio: MinioConfig{
			Endpoint:  "localhost:9000",
			AccessKey: "minioadmin",
			SecretKey: "minioadmin",
			Bucket:    "product-images",
		},
		Jobs: JobsConfig{LowStockThreshold: 5, FacetRefreshMinutes: 5, StockAlertMinutes: 60},
	}
}

// Load builds the configuration from defaults, the optional TOML file named by CATALOG_CONFIG
// and finally the environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CATALOG_CONFIG"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v := os.Getenv(key)
		if v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
		*dst = n
		return nil
	}

	setString("DATABASE_URL", &cfg.Database.URL)
	setString("REDIS_ADDR", &cfg.Redis.Addr)
	setString("REDIS_PASSWORD", &cfg.Redis.Password)
	setString("MINIO_ENDPOINT", &cfg.Minio.Endpoint)
	setString("MINIO_ACCESS_KEY", &cfg.Minio.AccessKey)
	setString("MINIO_SECRET_KEY", &cfg.Minio.SecretKey)
	setString("MINIO_BUCKET", &cfg.Minio.Bucket)

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		useSSL, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid MINIO_USE_SSL %q: %w", v, err)
		}
		cfg.Minio.UseSSL = useSSL
	}

	for key, dst := range map[string]*int{
		"PORT":                  &cfg.Server.Port,
		"RATE_LIMIT_PER_SECOND": &cfg.Server.RateLimit,
		"REDIS_DB":              &cfg.Redis.DB,
		"CACHE_TTL_MINUTES":     &cfg.Redis.CacheTTLMinutes,
		"LOW_STOCK_THRESHOLD":   &cfg.Jobs.LowStockThreshold,
		"FACET_REFRESH_MINUTES": &cfg.Jobs.FacetRefreshMinutes,
		"STOCK_ALERT_MINUTES":   &cfg.Jobs.StockAlertMinutes,
	} {
		if err := setInt(key, dst); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("rate limit cannot be negative"))
	}
	if c.Redis.CacheTTLMinutes <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive"))
	}
	if c.Jobs.FacetRefreshMinutes <= 0 || c.Jobs.StockAlertMinutes <= 0 {
		errs = append(errs, errors.New("job intervals must be positive"))
	}
	if c.Jobs.LowStockThreshold < 0 {
		errs = append(errs, errors.New("low stock threshold cannot be negative"))
	}
	return errors.Join(errs...)
}
