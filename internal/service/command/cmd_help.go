package command

import (
	"context"
	"fmt"
)

type HelpCommand struct {
	router    *Router
	formatter *ResponseFormatter
}

func NewHelpCommand(router *Router) *HelpCommand {
	return &HelpCommand{router: router, formatter: NewResponseFormatter()}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	var items []string
	for _, cmd := range c.router.ListCommands() {
		items = append(items, fmt.Sprintf("/%s - %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(
		c.formatter.Info("Commands"),
		c.formatter.List(items),
	), nil
}
