package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/tokens"
)

// NewEmbedder returns the configured embedder, or nil when embeddings
// are disabled.
func NewEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (core.Embedder, error) {
	var backend core.Embedder
	switch cfg.Provider {
	case "", "none":
		log.FromCtx(ctx).Info().Msg("embeddings disabled")
		return nil, nil
	case "openai":
		backend = NewOpenAI(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "ollama":
		backend = NewOllama(cfg.BaseURL, cfg.APIKey, cfg.Model)
	case "llamacpp":
		backend = NewLlamaCpp(cfg.BaseURL, cfg.APIKey)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}

	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Int("max_tokens", cfg.MaxTokens).
		Msg("starting embedding provider")

	return NewChunked(backend, tokens.NewBudget(cfg.MaxTokens)), nil
}
