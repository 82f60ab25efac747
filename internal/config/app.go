package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
	StoreMemory = "memory"
)

type AppConfig struct {
	RuntimePath string `env:"CHATGATE_RUNTIME_PATH" envDefault:".chatgate"`
	// sqlite, file (bot_memory.json) or memory (volatile)
	StoreBackend string `env:"CHATGATE_STORE" envDefault:"sqlite"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"true"`
	EnableHealth   bool `env:"ENABLE_HEALTH" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "chatgate.db")
}

func (c AppConfig) GetSnapshotPath() string {
	return filepath.Join(c.RuntimePath, "bot_memory.json")
}

func (c AppConfig) GetPersonaPath() string {
	return filepath.Join(c.RuntimePath, "PERSONA.md")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
