// Package jsonfile keeps the whole user-state map in one JSON object
// keyed by user ID.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sandevgo/chatgate/pkg/log"
)

type Repo struct {
	path string
	mu   sync.Mutex
}

func NewRepo(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string {
	return r.path
}

// LoadAll reads the snapshot. A missing file is an empty state.
func (r *Repo) LoadAll(ctx context.Context) (map[string]json.RawMessage, error) {
	r.mu.Lock()
	data, err := os.ReadFile(r.path)
	r.mu.Unlock()

	if err != nil {
		if os.IsNotExist(err) {
			log.FromCtx(ctx).Info().Str("path", r.path).Msg("no state snapshot found, starting empty")
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read state snapshot: %w", err)
	}

	users := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to parse state snapshot: %w", err)
	}
	return users, nil
}

// SaveAll writes to a temp file and renames it over the snapshot.
func (r *Repo) SaveAll(ctx context.Context, users map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state snapshot: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace state snapshot: %w", err)
	}
	return nil
}
