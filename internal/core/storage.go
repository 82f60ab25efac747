package core

import (
	"context"
	"encoding/json"
)

// StateRepository persists the per-user state map, one JSON document
// per user ID. SaveAll replaces the stored set.
type StateRepository interface {
	LoadAll(ctx context.Context) (map[string]json.RawMessage, error)
	SaveAll(ctx context.Context, users map[string]json.RawMessage) error
}

// UserStateReader is implemented by repositories that can fetch one
// user's document without loading the rest. Get returns nil when the
// user has no stored state.
type UserStateReader interface {
	Get(ctx context.Context, userID string) (json.RawMessage, error)
}
