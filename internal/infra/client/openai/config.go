package ai

import (
	"github.com/Builder-Lawyers/orbiter-backend/pkg/env"
)

type OpenAIConfig struct {
	apiKey    string
	baseURL   string
	model     string
	maxTokens int64
}

func NewOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		apiKey:    env.GetEnv("OPENAI_KEY", ""),
		baseURL:   env.GetEnv("OPENAI_BASE_URL", ""),
		model:     env.GetEnv("OPENAI_MODEL", "gpt-4o-mini"),
		maxTokens: int64(env.GetInt("OPENAI_TOKENS", 300)),
	}
}

// Enabled reports whether an API key is configured.
func (c OpenAIConfig) Enabled() bool {
	return c.apiKey != ""
}
