package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAICompatibleProvider covers OpenAI itself and the vendors that speak its chat API (Groq, DeepSeek)
type OpenAICompatibleProvider struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

func NewOpenAICompatibleProvider(name, apiKey, baseURL, model string, temperature float32, maxTokens int) *OpenAICompatibleProvider {
	if model == "" {
		model = "gpt-4o-mini"
	}
	if temperature == 0 {
		temperature = 0.7
	}
	if maxTokens == 0 {
		maxTokens = 2048
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAICompatibleProvider{
		name:        name,
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func (p *OpenAICompatibleProvider) GetProviderName() string {
	return p.name
}

func (p *OpenAICompatibleProvider) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%s error: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s: %w", p.name, ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
