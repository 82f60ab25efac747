package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

// BotConfig shapes how the responder talks to users.
type BotConfig struct {
	PersonaName    string        `env:"BOT_PERSONA_NAME" envDefault:"Mizu"`
	IgnorePrefix   string        `env:"BOT_IGNORE_PREFIX" envDefault:"!"`
	TypingInterval time.Duration `env:"BOT_TYPING_INTERVAL" envDefault:"5s"`

	// Context Management
	ContextTokenBudget int  `env:"BOT_CONTEXT_TOKENS" envDefault:"2000"`
	IndexMessages      bool `env:"BOT_INDEX_MESSAGES" envDefault:"false"`
	RecallTopK         int  `env:"BOT_RECALL_TOP_K" envDefault:"3"`
}

func NewBotConfig(ctx context.Context) *BotConfig {
	c := &BotConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Bot config")
	}
	return c
}
