package command

import (
	"context"

	"github.com/sandevgo/chatgate/internal/service/memory"
)

type ProfileCommand struct {
	conv      *memory.Conversation
	formatter *ResponseFormatter
}

func NewProfileCommand(conv *memory.Conversation) *ProfileCommand {
	return &ProfileCommand{conv: conv, formatter: NewResponseFormatter()}
}

func (c *ProfileCommand) Name() string {
	return "profile"
}

func (c *ProfileCommand) Description() string {
	return "Show what I remember about you"
}

func (c *ProfileCommand) Execute(ctx context.Context, userID string, args []string) (string, error) {
	text := c.conv.ProfileText(userID)
	if text == "" {
		return c.formatter.Combine(
			c.formatter.Info("Your Profile"),
			"I don't know much about you yet.",
			c.formatter.Tip("keep chatting and I'll pick things up as we go"),
		), nil
	}
	return c.formatter.Combine(
		c.formatter.Info("Your Profile"),
		text,
	), nil
}
