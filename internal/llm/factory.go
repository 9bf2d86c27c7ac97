package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/highlog/interviewer/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → timeout → retry → logging → base
	logged := WithLogging(base, cfg.Provider, eventRepo)
	return withTimeout(WithRetry(logged, cfg.Retry), cfg.Timeout), nil
}

// timeoutProvider bounds each Generate call, retries included.
type timeoutProvider struct {
	Provider
	timeout time.Duration
}

func withTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Generate(ctx, req)
}

// NewEmbedder creates the embedding backend for passage retrieval.
// It returns ErrNoEmbedder when the selected provider cannot embed.
func NewEmbedder(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Embedder, error) {
	name := cfg.EmbeddingProvider
	if name == "" {
		name = cfg.Provider
	}

	var base Embedder
	switch name {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, ErrNoEmbedder
		}
		p, err := NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, fmt.Errorf("initializing gemini embedder: %w", err)
		}
		base = p
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrNoEmbedder
		}
		p, err := NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("initializing openai embedder: %w", err)
		}
		base = p
	case "mock":
		return NewMockEmbedder(nil), nil
	default:
		return nil, ErrNoEmbedder
	}

	return WithEmbedLogging(base, name, eventRepo), nil
}
