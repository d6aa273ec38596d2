package config

import (
	"os"
	"sync"
)

type PerplexityConfig struct {
	APIKey  string
	BaseURL string
}

var (
	perplexityConfig *PerplexityConfig
	perplexityOnce   sync.Once
)

func LoadPerplexityConfig() *PerplexityConfig {
	perplexityOnce.Do(func() {
		baseURL := os.Getenv("PERPLEXITY_BASE_URL")
		if baseURL == "" {
			baseURL = "https://api.perplexity.ai"
		}
		perplexityConfig = &PerplexityConfig{
			APIKey:  os.Getenv("PERPLEXITY_API_KEY"),
			BaseURL: baseURL,
		}
	})
	return perplexityConfig
}
