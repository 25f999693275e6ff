package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/fuxi/internal/config"
	fuxierr "github.com/agenthands/fuxi/internal/errors"
)

// NewClient builds the client for the configured provider. An empty provider
// returns a nil client and no error: AI features are then unavailable.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	switch provider {
	case "":
		return nil, nil

	case "openai":
		return WithLogging(NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL, maxTokens), provider), nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, maxTokens)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return WithLogging(c, provider), nil

	case "claude", "anthropic":
		return WithLogging(NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL, maxTokens), provider), nil

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1 and ignores the key.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama"
		}
		return WithLogging(NewOpenAIClient(apiKey, cfg.Model, baseURL, maxTokens), provider), nil

	default:
		return nil, fuxierr.NewConfigError("llm", fmt.Sprintf("unsupported llm provider: %s", provider), nil)
	}
}
