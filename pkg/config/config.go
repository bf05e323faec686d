package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kmiya/newsbrief/pkg/domain"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Feeds []domain.FeedConfig `yaml:"feeds" json:"feeds" jsonschema:"required,description=Feeds polled every run"`

	Keywords KeywordsConfig `yaml:"keywords" json:"keywords" jsonschema:"description=Exclusion and importance keyword sets"`

	Limits struct {
		PerFeed     int `yaml:"per_feed" json:"per_feed" jsonschema:"default=4,description=Maximum items taken from a single feed"`
		Total       int `yaml:"total" json:"total" jsonschema:"default=10,description=Maximum items in the snapshot"`
		History     int `yaml:"history" json:"history" jsonschema:"default=500,description=Maximum titles kept in dedup history"`
		Concurrency int `yaml:"concurrency" json:"concurrency" jsonschema:"default=5,description=Maximum parallel feed fetches"`
	} `yaml:"limits" json:"limits" jsonschema:"description=Item and concurrency caps"`

	Fetch struct {
		Timeout   time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=15s,description=Per-feed fetch timeout"`
		UserAgent string        `yaml:"user_agent" json:"user_agent" jsonschema:"default=newsbrief/1.0,description=User agent for feed requests"`
	} `yaml:"fetch" json:"fetch" jsonschema:"description=Feed retrieval configuration"`

	Storage struct {
		Snapshot   string `yaml:"snapshot" json:"snapshot" jsonschema:"default=var/news.json,description=Snapshot document location"`
		History    string `yaml:"history" json:"history" jsonschema:"default=var/history.json,description=Dedup history location"`
		ArchiveDSN string `yaml:"archive_dsn" json:"archive_dsn" jsonschema:"description=Optional SQLite DSN for the item archive; empty disables"`
	} `yaml:"storage" json:"storage" jsonschema:"description=Durable file locations"`

	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Presentation server configuration"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=30m,description=Time between runs in serve mode"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Serve mode scheduling"`

	Summary SummaryConfig `yaml:"summary" json:"summary" jsonschema:"description=On-demand article summarization"`
}

// KeywordsConfig holds the keyword rule sets
type KeywordsConfig struct {
	Exclude []string `yaml:"exclude" json:"exclude" jsonschema:"description=Titles containing any of these are dropped"`
	High    []string `yaml:"high" json:"high" jsonschema:"description=High importance keywords, checked first"`
	Medium  []string `yaml:"medium" json:"medium" jsonschema:"description=Medium importance keywords"`
}

// SummaryConfig holds configuration for the summarization collaborator.
// Summarization is a feature flag: with no API key the endpoint stays up
// but reports itself unconfigured.
type SummaryConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (can use environment variable)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"default=gpt-4o-mini,description=Model name"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Temperature for response generation"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=500,description=Maximum tokens in response"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
	Prompt      string        `yaml:"prompt" json:"prompt" jsonschema:"description=Custom summarization prompt (optional)"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// set defaults for limits
	if cfg.Limits.PerFeed == 0 {
		cfg.Limits.PerFeed = 4
	}
	if cfg.Limits.Total == 0 {
		cfg.Limits.Total = 10
	}
	if cfg.Limits.History == 0 {
		cfg.Limits.History = 500
	}
	if cfg.Limits.Concurrency == 0 {
		cfg.Limits.Concurrency = 5
	}

	// set defaults for fetching
	if cfg.Fetch.Timeout == 0 {
		cfg.Fetch.Timeout = 15 * time.Second
	}
	if cfg.Fetch.UserAgent == "" {
		cfg.Fetch.UserAgent = "newsbrief/1.0"
	}

	// set defaults for storage
	if cfg.Storage.Snapshot == "" {
		cfg.Storage.Snapshot = "var/news.json"
	}
	if cfg.Storage.History == "" {
		cfg.Storage.History = "var/history.json"
	}

	// set defaults for server
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	// set defaults for scheduling
	if cfg.Schedule.Interval == 0 {
		cfg.Schedule.Interval = 30 * time.Minute
	}

	// set defaults for summarization
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = "gpt-4o-mini"
	}
	if cfg.Summary.Temperature == 0 {
		cfg.Summary.Temperature = 0.3
	}
	if cfg.Summary.MaxTokens == 0 {
		cfg.Summary.MaxTokens = 500
	}
	if cfg.Summary.Timeout == 0 {
		cfg.Summary.Timeout = 30 * time.Second
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, fc := range cfg.Feeds {
		if fc.URL == "" {
			return fmt.Errorf("feeds[%d].url is required", i)
		}
		if fc.Category == "" {
			return fmt.Errorf("feeds[%d].category is required", i)
		}
	}

	if cfg.Limits.PerFeed < 1 {
		return fmt.Errorf("limits.per_feed must be at least 1")
	}
	if cfg.Limits.Total < 1 {
		return fmt.Errorf("limits.total must be at least 1")
	}
	if cfg.Limits.History < cfg.Limits.Total {
		return fmt.Errorf("limits.history must be at least limits.total")
	}
	if cfg.Limits.Concurrency < 1 {
		return fmt.Errorf("limits.concurrency must be at least 1")
	}

	if cfg.Fetch.Timeout < time.Second {
		return fmt.Errorf("fetch timeout must be at least 1 second")
	}
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	if cfg.Schedule.Interval < time.Minute {
		return fmt.Errorf("schedule interval must be at least 1 minute")
	}

	return nil
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetSummaryConfig returns summarization configuration
func (c *Config) GetSummaryConfig() SummaryConfig {
	return c.Summary
}
