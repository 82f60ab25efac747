package gate

import (
	"context"
	"errors"

	"github.com/sandevgo/chatgate/internal/core"
)

var ErrQuotaExhausted = errors.New("daily generation quota exhausted")

type meteredGenerator struct {
	gen   core.Generator
	quota *DailyQuota
}

// Metered wraps gen so every call it makes counts against q. Calls made
// once the budget is spent fail with ErrQuotaExhausted without reaching gen.
func (q *DailyQuota) Metered(gen core.Generator) core.Generator {
	return &meteredGenerator{gen: gen, quota: q}
}

func (m *meteredGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if !m.quota.Allow() {
		return "", ErrQuotaExhausted
	}
	text, err := m.gen.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, core.ErrRateLimited) {
			m.quota.Exhaust()
		}
		return "", err
	}
	m.quota.Consume()
	return text, nil
}
