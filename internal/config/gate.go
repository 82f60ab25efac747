package config

import (
	"context"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/chatgate/pkg/log"
)

// GateConfig controls admission: cooldown, dedup windows, daily quota and
// the janitor that keeps the per-user maps bounded.
type GateConfig struct {
	Cooldown      time.Duration `env:"GATE_COOLDOWN" envDefault:"3s"`
	DedupTTL      time.Duration `env:"GATE_DEDUP_TTL" envDefault:"10s"`
	RespondedTTL  time.Duration `env:"GATE_RESPONDED_TTL" envDefault:"30s"`
	DailyLimit    int           `env:"GATE_DAILY_LIMIT" envDefault:"45"`
	SweepInterval time.Duration `env:"GATE_SWEEP_INTERVAL" envDefault:"5m"`
	InactiveAfter time.Duration `env:"GATE_INACTIVE_AFTER" envDefault:"720h"`
}

func NewGateConfig(ctx context.Context) *GateConfig {
	c := &GateConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gate config")
	}
	return c
}
