package llm

import (
	"fmt"
	"strings"

	"github.com/esachdev28/truth-weaver/internal/model"
	"github.com/sashabaranov/go-openai"
)

// Groq exposes an OpenAI-compatible API
const (
	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "llama-3.3-70b-versatile"
)

// defaultModels replaces the Groq default when another provider is selected
var defaultModels = map[string]string{
	"openai":    openai.GPT4oMini,
	"anthropic": "claude-3-5-sonnet-20241022",
	"claude":    "claude-3-5-sonnet-20241022",
	"ollama":    "llama3.1:8b",
}

// NewProvider creates a new LLM provider based on configuration.
// A nil provider with a nil error means text generation is disabled,
// either because no provider is configured or its credential is missing.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "groq":
		if config.APIKey == "" {
			return nil, nil
		}
		if config.BaseURL == "" {
			config.BaseURL = GroqBaseURL
		}
		if config.Model == "" {
			config.Model = GroqDefaultModel
		}
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		p.name = "groq"
		return p, nil

	case "openai":
		if config.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		if config.APIKey == "" {
			return nil, nil
		}
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", "none":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel merges file/env configuration with credentials
func ConfigFromModel(cfg *model.Config, creds model.Credentials) Config {
	out := Config{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      creds.LLMKey(strings.ToLower(cfg.LLM.Provider)),
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		HTTPProxy:   cfg.HTTP.HTTPProxy,
		HTTPSProxy:  cfg.HTTP.HTTPSProxy,
		NoProxy:     cfg.HTTP.NoProxy,
	}
	provider := strings.ToLower(out.Provider)
	if m, ok := defaultModels[provider]; ok && (out.Model == "" || out.Model == GroqDefaultModel) {
		out.Model = m
	}
	if provider == "ollama" && out.BaseURL == "" {
		out.BaseURL = creds.OllamaBaseURL
	}
	return out
}
