package rag

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

// Prompts holds the chat prompt template and retrieval parameters.
type Prompts struct {
	Chat ChatPrompt `yaml:"chat"`
}

// ChatPrompt configures the answer generation.
type ChatPrompt struct {
	TopK        int     `yaml:"top_k"`
	Temperature float64 `yaml:"temperature"`
	Template    string  `yaml:"template"`
}

// LoadPrompts parses the embedded prompt configuration.
func LoadPrompts() (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(promptsYAML, &p); err != nil {
		return nil, fmt.Errorf("parsing embedded prompts: %w", err)
	}
	if p.Chat.Template == "" {
		return nil, fmt.Errorf("embedded prompts missing chat template")
	}
	if p.Chat.TopK <= 0 {
		p.Chat.TopK = 5
	}
	return &p, nil
}

// Build fills the template with the retrieved context and the user query.
func (c ChatPrompt) Build(context, query string) string {
	return fmt.Sprintf(c.Template, context, query)
}
