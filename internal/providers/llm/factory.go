package llm

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
)

// NewGenerator creates the Generator selected by configuration.
func NewGenerator(ctx context.Context, cfg *config.LLMConfig) (core.Generator, error) {
	log.FromCtx(ctx).Info().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Msg("starting llm provider")

	p := Params{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
	}

	switch cfg.Provider {
	case "gemini":
		return NewGemini(p), nil
	case "openai":
		return NewOpenAI(p), nil
	case "anthropic":
		return NewAnthropic(p), nil
	case "openrouter":
		return NewOpenRouter(p), nil
	case "ollama":
		return NewOllama(p), nil
	case "custom":
		if p.BaseURL == "" {
			return nil, fmt.Errorf("custom llm provider requires LLM_BASE_URL")
		}
		return NewCustomOpenAI(p), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}
