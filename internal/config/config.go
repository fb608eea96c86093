package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// Config captures the settings required to boot the post-mortem engine.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Generation GenerationConfig `yaml:"generation"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rateLimit"`
	CORS       CORSConfig       `yaml:"cors"`
}

// ServerConfig controls HTTP listener behaviour.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// DataConfig locates the on-disk incident records.
type DataConfig struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

// GenerationConfig names the narrative backend the router selects.
type GenerationConfig struct {
	Provider string        `yaml:"provider"`
	Model    string        `yaml:"model"`
	APIKey   string        `yaml:"apiKey"`
	BaseURL  string        `yaml:"baseURL"`
	Timeout  time.Duration `yaml:"timeout"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string        `yaml:"level"`
	JSON  bool          `yaml:"json"`
	File  LogFileConfig `yaml:"file"`
}

// LogFileConfig enables rotated file output when Path is set.
type LogFileConfig struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
}

// RateLimitConfig bounds AI-analysis requests per window.
type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

// CORSConfig controls cross-origin access for the browser client.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("PM_ENGINE_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// Validate enforces settings the router needs before any request is served.
func (c *Config) Validate() error {
	if c.Generation.Provider == "" {
		return utils.NewConfigurationError("config.Validate", "generation.provider must be set")
	}
	if c.Generation.Model == "" {
		return utils.NewConfigurationError("config.Validate", "generation.model must be set")
	}
	if c.Data.Dir == "" {
		return utils.NewConfigurationError("config.Validate", "data.dir must be set")
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			GracefulTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			Dir:   "data",
			Watch: true,
		},
		Generation: GenerationConfig{
			Provider: "gemini",
			Timeout:  30 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", JSON: false},
		RateLimit: RateLimitConfig{
			Requests: 5,
			Window:   time.Minute,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PM_ENGINE_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Address = ":" + v
	}
	if v := os.Getenv("PM_ENGINE_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("PM_ENGINE_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("PM_ENGINE_DATA_WATCH"); v != "" {
		cfg.Data.Watch = strings.EqualFold(v, "true") || v == "1"
	}
	if v := os.Getenv("PM_ENGINE_PROVIDER"); v != "" {
		cfg.Generation.Provider = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("PM_ENGINE_MODEL"); v != "" {
		cfg.Generation.Model = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && strings.EqualFold(cfg.Generation.Provider, "openai") {
		cfg.Generation.APIKey = v
	}
	if v := os.Getenv("PM_ENGINE_GENERATION_BASE_URL"); v != "" {
		cfg.Generation.BaseURL = v
	}
	if v := os.Getenv("PM_ENGINE_GENERATION_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Generation.Timeout = d
		}
	}
	if v := os.Getenv("PM_ENGINE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("PM_ENGINE_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("PM_ENGINE_LOG_FILE"); v != "" {
		cfg.Logging.File.Path = v
	}
	if v := os.Getenv("PM_ENGINE_RATE_LIMIT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.Requests = n
		}
	}
	if v := os.Getenv("PM_ENGINE_RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.RateLimit.Window = d
		}
	}
	if v := os.Getenv("PM_ENGINE_CORS_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		cfg.CORS.AllowedOrigins = origins
	}
}
