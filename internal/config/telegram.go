package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

type TelegramConfig struct {
	Token string `env:"TELEGRAM_TOKEN,required,notEmpty" secret:"true"`
	// Group chats the bot listens to without being mentioned.
	// Private chats are always served.
	AllowedChats []int64 `env:"TELEGRAM_ALLOWED_CHATS" envSeparator:","`
}

func NewTelegramConfig(ctx context.Context) *TelegramConfig {
	c := &TelegramConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Telegram config")
	}
	return c
}

type HealthConfig struct {
	Port int    `env:"PORT" envDefault:"10000"`
	Name string `env:"HEALTH_NAME" envDefault:"chatgate"`
}

func NewHealthConfig(ctx context.Context) *HealthConfig {
	c := &HealthConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Health config")
	}
	return c
}
