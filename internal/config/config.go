// Package config loads watchfloor settings: defaults, then an optional YAML
// file, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/abelbrown/watchfloor/internal/combine"
	"github.com/abelbrown/watchfloor/internal/dedup"
	"github.com/abelbrown/watchfloor/internal/entity"
	"github.com/abelbrown/watchfloor/internal/fetch"
	"github.com/abelbrown/watchfloor/internal/intel"
)

const (
	configPathEnv     = "WATCHFLOOR_CONFIG"
	dbPathEnv         = "WATCHFLOOR_DB"
	natsURLEnv        = "WATCHFLOOR_NATS_URL"
	logLevelEnv       = "WATCHFLOOR_LOG_LEVEL"
	ollamaEndpointEnv = "WATCHFLOOR_OLLAMA_ENDPOINT"
)

// Config is the complete application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Store    StoreConfig    `yaml:"store"`
	Feeds    []fetch.Source `yaml:"feeds"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Notify   NotifyConfig   `yaml:"notify"`
	Hints    HintsConfig    `yaml:"hints"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// EngineConfig tunes the analysis engine.
type EngineConfig struct {
	PrimaryWeights     combine.PrimaryWeights   `yaml:"primary_weights"`
	SecondaryWeights   combine.SecondaryWeights `yaml:"secondary_weights"`
	DuplicateThreshold float64                  `yaml:"duplicate_threshold"`
	DuplicateWindow    time.Duration            `yaml:"duplicate_window"`
	Concurrency        int                      `yaml:"concurrency"`
	ArticleTimeout     time.Duration            `yaml:"article_timeout"`
	EntityCap          int                      `yaml:"entity_cap"`

	// WindowLimit caps how many recent articles form the duplicate window.
	WindowLimit int `yaml:"window_limit"`
}

// StoreConfig locates the sqlite database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// FetchConfig controls feed retrieval.
type FetchConfig struct {
	Timeout     time.Duration `yaml:"timeout"`
	MinInterval time.Duration `yaml:"min_interval"`
	Concurrency int           `yaml:"concurrency"`
}

// ScheduleConfig sets when the pipeline runs in watch mode.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// NotifyConfig describes the NATS publisher. An empty URL disables it.
type NotifyConfig struct {
	URL         string `yaml:"url"`
	Subject     string `yaml:"subject"`
	MinPriority string `yaml:"min_priority"`
}

// HintsConfig describes the optional Ollama hint service.
type HintsConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Endpoint          string        `yaml:"endpoint"`
	Model             string        `yaml:"model"`
	Timeout           time.Duration `yaml:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

// MetricsConfig sets the prometheus listen address. Empty disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// LogConfig selects log level and destination.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
	Dir   string `yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Engine: EngineConfig{
			PrimaryWeights:     combine.DefaultPrimaryWeights(),
			SecondaryWeights:   combine.DefaultSecondaryWeights(),
			DuplicateThreshold: dedup.DefaultThreshold,
			DuplicateWindow:    dedup.DefaultWindow,
			Concurrency:        8,
			ArticleTimeout:     5 * time.Second,
			EntityCap:          entity.DefaultClassCap,
			WindowLimit:        2000,
		},
		Store: StoreConfig{Path: filepath.Join(DataDir(), "watchfloor.db")},
		Feeds: fetch.DefaultSources(),
		Fetch: FetchConfig{
			Timeout:     30 * time.Second,
			MinInterval: 2 * time.Second,
			Concurrency: 5,
		},
		Schedule: ScheduleConfig{Cron: "*/15 * * * *"},
		Notify: NotifyConfig{
			Subject:     "watchfloor.assessments",
			MinPriority: string(intel.LevelHigh),
		},
		Hints: HintsConfig{
			Endpoint:          "http://localhost:11434",
			Model:             "llama3.2",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 1,
		},
		Log: LogConfig{Level: "info"},
	}
}

// DataDir is where watchfloor keeps its database and logs by default.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".watchfloor"
	}
	return filepath.Join(home, ".watchfloor")
}

// Load builds the configuration. path may be empty, in which case
// WATCHFLOOR_CONFIG is consulted; with neither set only defaults and
// environment overrides apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(natsURLEnv); v != "" {
		c.Notify.URL = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(ollamaEndpointEnv); v != "" {
		c.Hints.Endpoint = v
		c.Hints.Enabled = true
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if err := c.Engine.PrimaryWeights.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Engine.SecondaryWeights.Validate(); err != nil {
		errs = append(errs, err)
	}
	if t := c.Engine.DuplicateThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Errorf("duplicate_threshold must be in (0,1], got %v", t))
	}
	if c.Engine.DuplicateWindow <= 0 {
		errs = append(errs, errors.New("duplicate_window must be positive"))
	}
	if c.Engine.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Engine.Concurrency))
	}
	if c.Engine.EntityCap < 1 {
		errs = append(errs, fmt.Errorf("entity_cap must be at least 1, got %d", c.Engine.EntityCap))
	}
	if c.Store.Path == "" {
		errs = append(errs, errors.New("store.path is required"))
	}
	if c.Fetch.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency))
	}
	for i, f := range c.Feeds {
		if f.URL == "" {
			errs = append(errs, fmt.Errorf("feeds[%d] (%s): url is required", i, f.Name))
		}
		if f.Credibility < 0 || f.Credibility > 100 {
			errs = append(errs, fmt.Errorf("feeds[%d] (%s): credibility must be in 0..100", i, f.Name))
		}
	}
	if c.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
			errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
		}
	}
	if p := intel.Level(strings.ToUpper(c.Notify.MinPriority)); p != "" && !p.Valid() {
		errs = append(errs, fmt.Errorf("notify.min_priority: unknown level %q", c.Notify.MinPriority))
	}
	return errors.Join(errs...)
}

// Save writes the configuration as YAML.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
