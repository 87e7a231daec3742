package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

// Event is an indexable notification from the face service.
type Event struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Timestamp string `json:"timestamp"`
	Type      string `json:"type"`
}

// Engine answers questions against the vector store.
type Engine struct {
	store    *VectorStore
	provider Provider
	prompts  *Prompts
}

// NewEngine wires the store and the provider together.
func NewEngine(store *VectorStore, provider Provider, prompts *Prompts) *Engine {
	return &Engine{store: store, provider: provider, prompts: prompts}
}

// IndexEvent appends the event to the vector store as a synthetic document,
// making it retrievable by later questions.
func (e *Engine) IndexEvent(ctx context.Context, event Event) error {
	if event.Name == "" {
		return fmt.Errorf("event name is required")
	}

	kind := event.Type
	if kind == "" {
		kind = "registration"
	}
	text := fmt.Sprintf("Event: %s. Person %s (id %s) at %s.", kind, event.Name, event.ID, event.Timestamp)
	if err := e.store.Add(ctx, text, "event:"+event.ID); err != nil {
		return err
	}
	log.Info("indexed event", "type", kind, "name", event.Name)
	return nil
}

// buildPrompt retrieves context for the query and fills the template.
func (e *Engine) buildPrompt(ctx context.Context, query string) (string, error) {
	chunks, err := e.store.Search(ctx, query, e.prompts.Chat.TopK)
	if err != nil {
		return "", err
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return e.prompts.Chat.Build(strings.Join(texts, "\n\n"), query), nil
}

// Answer generates a complete answer for the query.
func (e *Engine) Answer(ctx context.Context, query string) (string, error) {
	prompt, err := e.buildPrompt(ctx, query)
	if err != nil {
		return "", err
	}
	return e.provider.Complete(ctx, prompt)
}

// StreamAnswer generates the answer incrementally through fn.
func (e *Engine) StreamAnswer(ctx context.Context, query string, fn func(chunk string) error) error {
	prompt, err := e.buildPrompt(ctx, query)
	if err != nil {
		return err
	}
	return e.provider.Stream(ctx, prompt, fn)
}
