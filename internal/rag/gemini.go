package rag

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const geminiModel = "gemini-2.5-flash"

// GeminiProvider generates answers with the Gemini API.
type GeminiProvider struct {
	client      *genai.Client
	temperature float64
}

// NewGeminiProvider creates the provider. The API key must be set.
func NewGeminiProvider(ctx context.Context, apiKey string, temperature float64) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, temperature: temperature}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) contents(prompt string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
}

func (p *GeminiProvider) config() *genai.GenerateContentConfig {
	temp := float32(p.temperature)
	return &genai.GenerateContentConfig{Temperature: &temp}
}

// Complete generates the whole answer in one call.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := p.client.Models.GenerateContent(ctx, geminiModel, p.contents(prompt), p.config())
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}
	content := result.Text()
	if content == "" {
		return "", errors.New("no response from Gemini")
	}
	return content, nil
}

// Stream generates the answer incrementally.
func (p *GeminiProvider) Stream(ctx context.Context, prompt string, fn func(chunk string) error) error {
	for result, err := range p.client.Models.GenerateContentStream(ctx, geminiModel, p.contents(prompt), p.config()) {
		if err != nil {
			return fmt.Errorf("gemini stream error: %w", err)
		}
		chunk := result.Text()
		if chunk == "" {
			continue
		}
		if err := fn(chunk); err != nil {
			return err
		}
	}
	return nil
}
