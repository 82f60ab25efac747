package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

type MemoryConfig struct {
	MaxMessages   int `env:"MEMORY_MAX_MESSAGES" envDefault:"50"`
	MaxTurns      int `env:"MEMORY_MAX_TURNS" envDefault:"20"`
	MaxEmbeddings int `env:"MEMORY_MAX_EMBEDDINGS" envDefault:"200"`

	ProfileEvery    int           `env:"MEMORY_PROFILE_EVERY" envDefault:"5"`
	ProfileInterval time.Duration `env:"MEMORY_PROFILE_INTERVAL" envDefault:"15m"`

	AutosaveInterval time.Duration `env:"MEMORY_AUTOSAVE_INTERVAL" envDefault:"30s"`
}

func NewMemoryConfig(ctx context.Context) *MemoryConfig {
	c := &MemoryConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Memory config")
	}
	return c
}
