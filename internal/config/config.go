package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv   = "NEWSBYTES_CONFIG"
	serverAddrEnv   = "NEWSBYTES_ADDR"
	mongoURLEnv     = "MONGO_URL"
	dbNameEnv       = "DB_NAME"
	useAIEnv        = "USE_AI_SUMMARIZATION"
	openAIAPIKeyEnv = "OPENAI_API_KEY"
	openAIModelEnv  = "OPENAI_MODEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Scraper  ScraperConfig  `yaml:"scraper"`
	AI       AIConfig       `yaml:"ai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes the MongoDB connection.
type DatabaseConfig struct {
	URL         string            `yaml:"url"`
	Name        string            `yaml:"name"`
	Collections CollectionsConfig `yaml:"collections"`
}

// CollectionsConfig names the collections the service reads and writes.
type CollectionsConfig struct {
	Articles string `yaml:"articles"`
	Status   string `yaml:"status"`
}

// ScraperConfig tunes the scrape pipeline: outbound politeness, retry
// behavior and how much of the body survives into the summary.
type ScraperConfig struct {
	UserAgent      string  `yaml:"userAgent"`
	TimeoutSeconds int     `yaml:"timeoutSeconds"`
	MaxAttempts    int     `yaml:"maxAttempts"`
	Workers        int     `yaml:"workers"`
	HostRatePerSec float64 `yaml:"hostRatePerSec"`
	SummaryWords   int     `yaml:"summaryWords"`
}

// Timeout resolves the per-request fetch deadline.
func (s ScraperConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// AIConfig defines how to contact the completion API. Enabled is not part of
// the YAML surface: the USE_AI_SUMMARIZATION environment variable gates it.
type AIConfig struct {
	Enabled        bool   `yaml:"-"`
	Endpoint       string `yaml:"endpoint"`
	Model          string `yaml:"model"`
	APIKey         string `yaml:"apiKey"`
	SystemPrompt   string `yaml:"systemPrompt"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the completion request deadline.
func (a AIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// LoggingConfig controls log verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(mongoURLEnv); v != "" {
		c.Database.URL = v
	}

	if v := os.Getenv(dbNameEnv); v != "" {
		c.Database.Name = v
	}

	if v := os.Getenv(useAIEnv); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			c.AI.Enabled = enabled
		} else {
			log.Printf("config: invalid %s value %q, keeping %v", useAIEnv, v, c.AI.Enabled)
		}
	}

	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.AI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.AI.Model = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Database.URL != "" {
		base.Database.URL = override.Database.URL
	}
	if override.Database.Name != "" {
		base.Database.Name = override.Database.Name
	}
	if override.Database.Collections.Articles != "" {
		base.Database.Collections.Articles = override.Database.Collections.Articles
	}
	if override.Database.Collections.Status != "" {
		base.Database.Collections.Status = override.Database.Collections.Status
	}

	if override.Scraper.UserAgent != "" {
		base.Scraper.UserAgent = override.Scraper.UserAgent
	}
	if override.Scraper.TimeoutSeconds > 0 {
		base.Scraper.TimeoutSeconds = override.Scraper.TimeoutSeconds
	}
	if override.Scraper.MaxAttempts > 0 {
		base.Scraper.MaxAttempts = override.Scraper.MaxAttempts
	}
	if override.Scraper.Workers > 0 {
		base.Scraper.Workers = override.Scraper.Workers
	}
	if override.Scraper.HostRatePerSec > 0 {
		base.Scraper.HostRatePerSec = override.Scraper.HostRatePerSec
	}
	if override.Scraper.SummaryWords > 0 {
		base.Scraper.SummaryWords = override.Scraper.SummaryWords
	}

	if override.AI.Endpoint != "" {
		base.AI.Endpoint = override.AI.Endpoint
	}
	if override.AI.Model != "" {
		base.AI.Model = override.AI.Model
	}
	if override.AI.APIKey != "" {
		base.AI.APIKey = override.AI.APIKey
	}
	if override.AI.SystemPrompt != "" {
		base.AI.SystemPrompt = override.AI.SystemPrompt
	}
	if override.AI.TimeoutSeconds > 0 {
		base.AI.TimeoutSeconds = override.AI.TimeoutSeconds
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":8001"},
		Database: DatabaseConfig{
			URL:  "mongodb://localhost:27017",
			Name: "newsbytes",
			Collections: CollectionsConfig{
				Articles: "news_articles",
				Status:   "status_checks",
			},
		},
		Scraper: ScraperConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			TimeoutSeconds: 15,
			MaxAttempts:    3,
			Workers:        4,
			HostRatePerSec: 1,
			SummaryWords:   60,
		},
		AI: AIConfig{
			Enabled:        false,
			Endpoint:       "https://api.openai.com/v1/chat/completions",
			Model:          "gpt-4o-mini",
			APIKey:         "",
			SystemPrompt:   "You summarize and categorize news articles for an admin panel.",
			TimeoutSeconds: 20,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
