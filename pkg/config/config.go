package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all ytwatch configuration.
type Config struct {
	DBPath  string        `yaml:"db_path"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Cache   CacheConfig   `yaml:"cache"`
	Report  ReportConfig  `yaml:"report"`
}

// YouTubeConfig defines access to the YouTube Data API.
type YouTubeConfig struct {
	APIKey    string `yaml:"api_key"`
	BaseURL   string `yaml:"base_url"`
	BatchSize int    `yaml:"batch_size"`
}

// CacheConfig defines the remote metadata cache: a Firebase-style
// key-value store scoped to one user namespace.
type CacheConfig struct {
	BaseURL   string        `yaml:"base_url"`
	AuthKey   string        `yaml:"auth_key"`
	Namespace string        `yaml:"namespace"`
	TTL       time.Duration `yaml:"ttl"`
}

// ReportConfig controls how many rows each top-N table shows.
type ReportConfig struct {
	TopVideos     int `yaml:"top_videos"`
	TopChannels   int `yaml:"top_channels"`
	TopCategories int `yaml:"top_categories"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		DBPath: "ytwatch.db",
		YouTube: YouTubeConfig{
			BaseURL:   "https://www.googleapis.com/youtube/v3",
			BatchSize: 50,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Report: ReportConfig{
			TopVideos:     10,
			TopChannels:   5,
			TopCategories: 5,
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}
