package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Hermes     HermesConfig     `yaml:"hermes"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port               int    `yaml:"port"`
	MetricsPort        int    `yaml:"metrics_port"`
	AdminToken         string `yaml:"admin_token"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
	// ConnectTimeout bounds the startup retries against Postgres and NATS. 0 retries
	// until the process is stopped.
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type HermesConfig struct {
	URL string `yaml:"url"`
}

type EvaluationConfig struct {
	// Strict rejects comparisons outside [1, 9] and best == worst.
	Strict           bool `yaml:"strict"`
	MaxCriteria      int  `yaml:"max_criteria"`
	BatchConcurrency int  `yaml:"batch_concurrency"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file or environment overrides apply.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:               8700,
			MetricsPort:        8701,
			RateLimitPerMinute: 120,
		},
		Database: DatabaseConfig{
			ConnectTimeout: 30 * time.Second,
		},
		Hermes: HermesConfig{
			URL: "nats://localhost:4222",
		},
		Evaluation: EvaluationConfig{
			Strict:           false,
			MaxCriteria:      50,
			BatchConcurrency: 8,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Evaluation.MaxCriteria < 2 {
		return fmt.Errorf("evaluation.max_criteria must be at least 2, got %d", c.Evaluation.MaxCriteria)
	}
	if c.Database.ConnectTimeout < 0 {
		return fmt.Errorf("database.connect_timeout must not be negative, got %s", c.Database.ConnectTimeout)
	}
	if c.Evaluation.BatchConcurrency < 1 {
		return fmt.Errorf("evaluation.batch_concurrency must be positive, got %d", c.Evaluation.BatchConcurrency)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("WEIGH_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("WEIGH_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("WEIGH_ADMIN_TOKEN"); v != "" {
		cfg.Server.AdminToken = v
	}
	if v := os.Getenv("WEIGH_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("WEIGH_CONNECT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Database.ConnectTimeout = d
		}
	}
	if v := os.Getenv("WEIGH_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("WEIGH_STRICT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Evaluation.Strict = b
		}
	}
	if v := os.Getenv("WEIGH_MAX_CRITERIA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.MaxCriteria = n
		}
	}
	if v := os.Getenv("WEIGH_BATCH_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.BatchConcurrency = n
		}
	}
	if v := os.Getenv("WEIGH_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("WEIGH_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
