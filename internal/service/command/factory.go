package command

import (
	"github.com/sandevgo/chatgate/internal/service/gate"
	"github.com/sandevgo/chatgate/internal/service/memory"
)

// NewRouter wires the built-in chat commands.
func NewRouter(
	persona string,
	conv *memory.Conversation,
	quota *gate.DailyQuota,
) *Router {
	r := New(nil)
	r.Register(NewStartCommand(persona))
	r.Register(NewProfileCommand(conv))
	r.Register(NewQuotaCommand(quota))
	r.Register(NewHelpCommand(r))
	return r
}
