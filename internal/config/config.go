package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	API      APIConfig     `yaml:"api"`
	Storage  StorageConfig `yaml:"storage"`
	Sync     SyncConfig    `yaml:"sync"`
	LogLevel string        `yaml:"log_level"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
	Retry   RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	Cooldown       time.Duration `yaml:"cooldown"`
}

type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// DBPath returns the database file backing one category.
func (s StorageConfig) DBPath(category string) string {
	return filepath.Join(s.DataDir, category+".duckdb")
}

type SyncConfig struct {
	Exchange      string        `yaml:"exchange"`
	Categories    []string      `yaml:"categories"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://api.tushare.pro"
	}
	if c.API.Token == "" {
		c.API.Token = os.Getenv("TUSHARE_TOKEN")
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 60 * time.Second
	}
	if c.API.Retry.MaxAttempts == 0 {
		c.API.Retry.MaxAttempts = 3
	}
	if c.API.Retry.InitialBackoff == 0 {
		c.API.Retry.InitialBackoff = 1 * time.Second
	}
	if c.API.Retry.MaxBackoff == 0 {
		c.API.Retry.MaxBackoff = 30 * time.Second
	}
	if c.API.Retry.Cooldown == 0 {
		c.API.Retry.Cooldown = 65 * time.Second
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Sync.Exchange == "" {
		c.Sync.Exchange = "SSE"
	}
	if c.Sync.WatchInterval == 0 {
		c.Sync.WatchInterval = 6 * time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
