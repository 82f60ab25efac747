package memory

import (
	"slices"

	"github.com/sandevgo/chatgate/internal/config"
)

// History keeps the bounded raw-message and turn logs of each user.
type History struct {
	store       *Store
	maxMessages int
	maxTurns    int
}

func NewHistory(store *Store, cfg *config.MemoryConfig) *History {
	return &History{
		store:       store,
		maxMessages: cfg.MaxMessages,
		maxTurns:    cfg.MaxTurns,
	}
}

func (h *History) AppendMessage(userID, content string) {
	rec := MessageRecord{Content: content, Timestamp: h.store.now()}
	h.store.update(userID, func(u *UserState) {
		u.RawMessages = pushBounded(u.RawMessages, rec, h.maxMessages)
	})
}

func (h *History) AppendTurn(userID, message, response string) {
	turn := ConversationTurn{
		UserMessage:   message,
		AgentResponse: response,
		Timestamp:     h.store.now(),
	}
	h.store.update(userID, func(u *UserState) {
		u.Conversations = pushBounded(u.Conversations, turn, h.maxTurns)
	})
}

// RecentMessages returns up to n raw messages, oldest first.
func (h *History) RecentMessages(userID string, n int) []MessageRecord {
	var out []MessageRecord
	h.store.view(userID, func(u *UserState) {
		out = tail(u.RawMessages, n)
	})
	return out
}

// RecentTurns returns up to n turns, oldest first.
func (h *History) RecentTurns(userID string, n int) []ConversationTurn {
	var out []ConversationTurn
	h.store.view(userID, func(u *UserState) {
		out = tail(u.Conversations, n)
	})
	return out
}

// Previous returns the message before the latest one.
func (h *History) Previous(userID string) (MessageRecord, bool) {
	var (
		rec MessageRecord
		ok  bool
	)
	h.store.view(userID, func(u *UserState) {
		if n := len(u.RawMessages); n >= 2 {
			rec, ok = u.RawMessages[n-2], true
		}
	})
	return rec, ok
}

// pushBounded appends item and drops the oldest entries beyond limit.
// A non-positive limit keeps everything.
func pushBounded[T any](items []T, item T, limit int) []T {
	items = append(items, item)
	if limit <= 0 || len(items) <= limit {
		return items
	}

	over := len(items) - limit
	copy(items, items[over:])
	clear(items[limit:])
	return items[:limit]
}

// tail copies the last n items.
func tail[T any](items []T, n int) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}
	return slices.Clone(items[len(items)-n:])
}
