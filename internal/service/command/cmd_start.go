package command

import (
	"context"
	"fmt"
)

type StartCommand struct {
	persona string
}

func NewStartCommand(persona string) *StartCommand {
	return &StartCommand{persona: persona}
}

func (c *StartCommand) Name() string {
	return "start"
}

func (c *StartCommand) Description() string {
	return "Say hello"
}

func (c *StartCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	return fmt.Sprintf("👋 Hi, I'm **%s**! Just write to me and I'll answer. Send /help to see what else I can do.", c.persona), nil
}
