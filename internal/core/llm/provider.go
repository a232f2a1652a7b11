package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/proposal-ai-be/internal/shared/config"
)

// LLMProvider is one text-generation backend
type LLMProvider interface {
	GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error)
	GetProviderName() string
}

type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGemini   ProviderType = "gemini"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
	ProviderClaude   ProviderType = "claude"
)

// DefaultGeminiModel is the model the proposal generator has always been tuned against
const DefaultGeminiModel = "gemini-1.5-pro-latest"

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type ProviderType

	// API Keys
	OpenAIKey   string
	GeminiKey   string
	GroqKey     string
	DeepSeekKey string
	ClaudeKey   string

	Model       string
	Temperature float32
	MaxTokens   int

	// Zero means no client-side timeout; the caller's context still cancels.
	Timeout time.Duration

	// BaseURL overrides the provider endpoint (self-hosted gateways, tests)
	BaseURL string
}

// NewProvider builds the provider selected by cfg.Type
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	switch cfg.Type {
	case ProviderGemini:
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		return NewGeminiProvider(cfg.GeminiKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout, cfg.BaseURL), nil

	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
		return NewOpenAICompatibleProvider("OpenAI", cfg.OpenAIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderGroq:
		if cfg.GroqKey == "" {
			return nil, fmt.Errorf("GROQ_API_KEY is required")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.groq.com/openai/v1"
		}
		return NewOpenAICompatibleProvider("Groq", cfg.GroqKey, baseURL, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderDeepSeek:
		if cfg.DeepSeekKey == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY is required")
		}
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "https://api.deepseek.com/v1"
		}
		return NewOpenAICompatibleProvider("DeepSeek", cfg.DeepSeekKey, baseURL, cfg.Model, cfg.Temperature, cfg.MaxTokens), nil

	case ProviderClaude:
		if cfg.ClaudeKey == "" {
			return nil, fmt.Errorf("CLAUDE_API_KEY is required")
		}
		return NewClaudeProvider(cfg.ClaudeKey, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider type: %s", cfg.Type)
	}
}

// ProviderConfigFrom maps the application config onto a ProviderConfig with per-provider model defaults
func ProviderConfigFrom(c config.LLMConfig) *ProviderConfig {
	providerType := ProviderType(c.Provider)
	if providerType == "" {
		providerType = ProviderGemini
	}

	cfg := &ProviderConfig{
		Type:        providerType,
		OpenAIKey:   c.OpenAIKey,
		GeminiKey:   c.GeminiKey,
		GroqKey:     c.GroqKey,
		DeepSeekKey: c.DeepSeekKey,
		ClaudeKey:   c.ClaudeKey,
		Model:       c.Model,
		Timeout:     c.Timeout,
		Temperature: 0.7,
		MaxTokens:   4096,
	}

	if cfg.Model == "" {
		switch cfg.Type {
		case ProviderGemini:
			cfg.Model = DefaultGeminiModel
		case ProviderOpenAI:
			cfg.Model = "gpt-4o-mini"
		case ProviderGroq:
			cfg.Model = "llama-3.1-70b-versatile"
		case ProviderDeepSeek:
			cfg.Model = "deepseek-chat"
		case ProviderClaude:
			cfg.Model = "claude-3-5-sonnet-20241022"
		}
	}

	return cfg
}
