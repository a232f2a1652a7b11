package llm

import (
	"context"
	"log"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"
)

// Service is the generation client used by the proposal pipeline.
// One attempt per call; failures come back as *GenerationError.
type Service struct {
	provider     LLMProvider
	systemPrompt string
}

// NewService creates the service from provider config, exiting on misconfiguration like the other boot-time constructors
func NewService(cfg *ProviderConfig) *Service {
	provider, err := NewProvider(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to create LLM provider: %v", err)
	}

	log.Printf("🤖 Using LLM provider: %s (model: %s)", provider.GetProviderName(), cfg.Model)

	return &Service{provider: provider}
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

// WithSystemPrompt sets an instruction sent ahead of every prompt
func (s *Service) WithSystemPrompt(prompt string) *Service {
	s.systemPrompt = prompt
	return s
}

// Generate sends prompt to the provider and returns the raw text
func (s *Service) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	name := s.provider.GetProviderName()

	text, err := s.provider.GenerateResponse(ctx, s.systemPrompt, prompt)
	if err != nil {
		zlog.Error().Err(err).Str("provider", name).Dur("took", time.Since(start)).Msg("generation failed")
		return "", &GenerationError{Provider: name, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &GenerationError{Provider: name, Err: ErrEmptyResponse}
	}

	zlog.Debug().Str("provider", name).Int("chars", len(text)).Dur("took", time.Since(start)).Msg("generation succeeded")
	return text, nil
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
