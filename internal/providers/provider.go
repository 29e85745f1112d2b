package providers

import (
	"context"
	"fmt"
)

// ChatRequest contains the prompts sent to an LLM.
type ChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// ChatResponse contains the raw response from an LLM.
type ChatResponse struct {
	Content    string
	TokensUsed int
}

// Provider is the LLM provider abstraction interface.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Provider, error) {
	switch provider {
	case "anthropic":
		return NewAnthropic(model)
	case "openai":
		return NewOpenAI(model)
	case "ollama", "lmstudio":
		return NewOllama(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
