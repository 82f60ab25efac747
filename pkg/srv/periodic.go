package srv

import (
	"context"
	"time"

	"github.com/sandevgo/chatgate/pkg/log"
)

// Periodic calls tick every interval until the start context is done.
// A non-positive interval disables the loop.
type Periodic struct {
	name     string
	interval time.Duration
	tick     func(ctx context.Context)
	final    func(ctx context.Context) error
}

func NewPeriodic(name string, interval time.Duration, tick func(ctx context.Context)) *Periodic {
	return &Periodic{
		name:     name,
		interval: interval,
		tick:     tick,
	}
}

// OnShutdown registers fn to run once when the service shuts down.
func (p *Periodic) OnShutdown(fn func(ctx context.Context) error) *Periodic {
	p.final = fn
	return p
}

func (p *Periodic) Start(ctx context.Context) error {
	if p.interval <= 0 {
		return nil
	}

	ctx = log.WithComponent(ctx, p.name)
	logger := log.FromCtx(ctx)
	logger.Debug().Dur("interval", p.interval).Msg("starting periodic task")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("stopping periodic task")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Periodic) Shutdown(ctx context.Context) error {
	if p.final == nil {
		return nil
	}
	return p.final(ctx)
}

func (p *Periodic) String() string {
	return p.name
}
