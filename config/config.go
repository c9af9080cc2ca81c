// Package config loads service configuration from a YAML file, .env files and
// environment variables, in increasing order of precedence.
//
// Environment overrides are declared with the `env` struct tag:
//
//	type ServerConfig struct {
//	    Addr string `yaml:"addr" env:"SERVER_ADDR"`
//	}
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mtheuszin1/adscale-deploy/logger"
)

// Cache drivers.
const (
	CacheMemory   = "memory"
	CacheDatabase = "database"
	CacheRedis    = "redis"
)

// Defaults applied to zero values after the file is read.
const (
	DefaultConfigPath   = "config.yml"
	DefaultAddr         = ":8080"
	DefaultMode         = "release"
	DefaultDatabasePath = "adscale.db"
	DefaultCacheTTL     = 10 * time.Minute
	DefaultRedisAddr    = "localhost:6379"
	DefaultWorkers      = 4
	DefaultChunkSize    = 50
	DefaultMediaDir     = "media"
	DefaultMediaBaseURL = "/media/"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Import   ImportConfig   `yaml:"import"`
	Logging  logger.Config  `yaml:"logging"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"SERVER_ADDR"`
	Mode string `yaml:"mode" env:"GIN_MODE"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH"`
}

type CacheConfig struct {
	Driver string        `yaml:"driver" env:"CACHE_DRIVER"`
	TTL    time.Duration `yaml:"ttl" env:"CACHE_TTL"`
	Redis  RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type ImportConfig struct {
	Workers      int    `yaml:"workers" env:"IMPORT_WORKERS"`
	ChunkSize    int    `yaml:"chunk_size" env:"IMPORT_CHUNK_SIZE"`
	MediaDir     string `yaml:"media_dir" env:"MEDIA_DIR"`
	MediaBaseURL string `yaml:"media_base_url" env:"MEDIA_BASE_URL"`
}

// Load reads path (a missing file is not an error), applies defaults, then env
// overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("load environment files: %w", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.SetDefaults()
	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// GetConfigPath returns CONFIG_PATH or the default path.
func GetConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return DefaultConfigPath
}

// loadEnvFiles loads ENV_FILE if set, otherwise .env.local then .env.
// godotenv never overrides variables that are already set.
func loadEnvFiles() error {
	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) SetDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.Mode == "" {
		c.Server.Mode = DefaultMode
	}
	if c.Database.Path == "" {
		c.Database.Path = DefaultDatabasePath
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheMemory
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = DefaultRedisAddr
	}
	if c.Import.Workers == 0 {
		c.Import.Workers = DefaultWorkers
	}
	if c.Import.ChunkSize == 0 {
		c.Import.ChunkSize = DefaultChunkSize
	}
	if c.Import.MediaDir == "" {
		c.Import.MediaDir = DefaultMediaDir
	}
	if c.Import.MediaBaseURL == "" {
		c.Import.MediaBaseURL = DefaultMediaBaseURL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = logger.DefaultLevel
	}
}

func (c *Config) Validate() error {
	switch c.Cache.Driver {
	case CacheMemory, CacheDatabase, CacheRedis:
	default:
		return fmt.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("config: cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("config: import workers must be positive, got %d", c.Import.Workers)
	}
	if c.Import.ChunkSize < 1 {
		return fmt.Errorf("config: import chunk size must be positive, got %d", c.Import.ChunkSize)
	}
	if c.Database.Path == "" {
		return errors.New("config: database path is required")
	}
	return nil
}
