package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatgate/internal/service/gate"
)

type QuotaCommand struct {
	quota     *gate.DailyQuota
	formatter *ResponseFormatter
}

func NewQuotaCommand(quota *gate.DailyQuota) *QuotaCommand {
	return &QuotaCommand{quota: quota, formatter: NewResponseFormatter()}
}

func (c *QuotaCommand) Name() string {
	return "quota"
}

func (c *QuotaCommand) Description() string {
	return "Show today's reply budget"
}

func (c *QuotaCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	used, limit := c.quota.Usage()
	return c.formatter.Combine(
		c.formatter.Info("Daily Quota"),
		c.formatter.Label("Used", fmt.Sprintf("%d / %d", used, limit)),
		c.formatter.Label("Resets in", gate.FormatUntilReset(c.quota.UntilReset())),
	), nil
}
