package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

type LLMConfig struct {
	// gemini, openai, openrouter, anthropic, ollama, custom
	Provider string        `env:"LLM_PROVIDER" envDefault:"gemini"`
	Model    string        `env:"LLM_MODEL" envDefault:"gemini-1.5-flash"`
	APIKey   string        `env:"LLM_API_KEY" secret:"true"`
	BaseURL  string        `env:"LLM_BASE_URL"`
	Timeout  time.Duration `env:"LLM_TIMEOUT" envDefault:"120s"`
}

func NewLLMConfig(ctx context.Context) *LLMConfig {
	c := &LLMConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse LLM config")
	}
	return c
}

type EmbeddingConfig struct {
	// none, openai, ollama, llamacpp
	Provider  string `env:"EMBEDDING_PROVIDER" envDefault:"none"`
	Model     string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	APIKey    string `env:"EMBEDDING_API_KEY" secret:"true"`
	BaseURL   string `env:"EMBEDDING_BASE_URL"`
	MaxTokens int    `env:"EMBEDDING_MAX_TOKENS" envDefault:"512"`
}

func NewEmbeddingConfig(ctx context.Context) *EmbeddingConfig {
	c := &EmbeddingConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Embedding config")
	}
	return c
}
