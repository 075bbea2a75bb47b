// Package labeling classifies corpus quotes with a language model and
// cleans up what the model answers.
package labeling

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kova98/threadcorpus/enums"
)

// Provider sends one prompt to a model and returns its text answer.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ProviderOptions struct {
	Model        string
	OllamaURL    string
	OpenAIURL    string
	OpenAIKey    string
	GoogleAPIKey string
	HTTPClient   *http.Client
}

func NewProvider(ctx context.Context, kind enums.Provider, opts ProviderOptions) (Provider, error) {
	switch kind {
	case enums.ProviderOllama:
		return &Ollama{BaseURL: opts.OllamaURL, Model: opts.Model, HTTPClient: opts.HTTPClient}, nil
	case enums.ProviderOpenAI:
		return &OpenAI{BaseURL: opts.OpenAIURL, APIKey: opts.OpenAIKey, Model: opts.Model, HTTPClient: opts.HTTPClient}, nil
	case enums.ProviderGemini:
		return NewGemini(ctx, GeminiConfig{APIKey: opts.GoogleAPIKey, Model: opts.Model, HTTPClient: opts.HTTPClient})
	}
	return nil, fmt.Errorf("unknown provider %q", kind)
}
