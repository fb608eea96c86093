// Package llm implements the narrative generation backends. Each client
// receives the deterministic fact bundle and routing decision and returns the
// structured post-mortem report; prompt construction and response parsing are
// shared across providers.
package llm

import (
	"strings"
	"time"

	"github.com/postmortemhq/postmortem-engine/internal/engine"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// Config carries backend settings from deployment configuration.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// New returns the generator for the configured provider.
func New(cfg Config) (engine.Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return NewGeminiClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "openai":
		return NewOpenAIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, utils.NewConfigurationError("llm.New", "unknown generation provider "+cfg.Provider)
	}
}
