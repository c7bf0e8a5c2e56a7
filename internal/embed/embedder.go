// Package embed provides the optional sentence-embedding backend used by
// the similarity scorer. Absence or failure of a backend never affects
// correctness; callers fall back to lexical similarity.
package embed

import (
	"context"
	"fmt"
	"time"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Options selects and configures a backend at startup.
type Options struct {
	// Provider is "none", "ollama", or "openai".
	Provider string
	Model    string
	// Host is the Ollama endpoint or an OpenAI-compatible base URL.
	Host   string
	APIKey string
	// Timeout bounds every embed call; it sits on the critical path of
	// classification, so keep it short.
	Timeout time.Duration
}

// DefaultTimeout is the per-call budget for embedding requests.
const DefaultTimeout = 3 * time.Second

// New builds the configured backend, or nil (with no error) when the
// provider is "none" or empty.
func New(opts Options) (Embedder, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	switch opts.Provider {
	case "", "none":
		return nil, nil
	case "ollama":
		return NewOllamaEmbedder(opts.Host, opts.Model, opts.Timeout), nil
	case "openai":
		return NewOpenAIEmbedder(opts.APIKey, opts.Host, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}
