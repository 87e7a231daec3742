package rag

import (
	"context"
	"fmt"
)

// Provider defines the interface for answer generation backends.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
	// Stream generates an answer and delivers it incrementally through fn.
	// A non-nil error from fn aborts the stream.
	Stream(ctx context.Context, prompt string, fn func(chunk string) error) error
}

// NewProvider creates the provider selected by name.
func NewProvider(ctx context.Context, name, openaiKey, geminiKey string, temperature float64) (Provider, error) {
	switch name {
	case "openai", "":
		return NewOpenAIProvider(openaiKey, temperature)
	case "gemini":
		return NewGeminiProvider(ctx, geminiKey, temperature)
	default:
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
}
