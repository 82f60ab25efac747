package core

import "context"

// Command is a slash command answered without a generation call.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, userID string, args []string) (string, error)
}
