// Package janitor keeps the gate's per-user maps and the memory store
// bounded over long uptimes.
package janitor

import (
	"context"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/service/gate"
	"github.com/sandevgo/chatgate/internal/service/memory"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/srv"
)

const usageInterval = time.Hour

type Janitor struct {
	gate          *gate.Gate
	store         *memory.Store
	inactiveAfter time.Duration
}

func New(g *gate.Gate, store *memory.Store, cfg *config.GateConfig) *Janitor {
	return &Janitor{
		gate:          g,
		store:         store,
		inactiveAfter: cfg.InactiveAfter,
	}
}

// Sweep purges expired gate entries and drops users idle longer than
// inactiveAfter. Users with a request in flight are kept.
func (j *Janitor) Sweep(ctx context.Context) {
	stats := j.gate.Sweep()

	removed := 0
	if j.inactiveAfter > 0 {
		removed = j.store.Cleanup(j.inactiveAfter, j.gate.InFlight)
	}

	log.FromCtx(ctx).Debug().
		Int("cooldowns", stats.Cooldowns).
		Int("responded", stats.Responded).
		Int("sent", stats.Sent).
		Int("inactive_users", removed).
		Int("users", j.store.Len()).
		Msg("sweep done")
}

// Service runs Sweep every interval.
func (j *Janitor) Service(interval time.Duration) srv.Service {
	return srv.NewPeriodic("janitor", interval, j.Sweep)
}

// UsageReporter logs quota usage once an hour.
func UsageReporter(quota *gate.DailyQuota) srv.Service {
	return srv.NewPeriodic("quota", usageInterval, func(ctx context.Context) {
		ReportUsage(ctx, quota)
	})
}

func ReportUsage(ctx context.Context, quota *gate.DailyQuota) {
	used, limit := quota.Usage()
	log.FromCtx(ctx).Info().
		Int("used", used).
		Int("limit", limit).
		Str("resets_in", gate.FormatUntilReset(quota.UntilReset())).
		Msg("daily quota usage")
}
