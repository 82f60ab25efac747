package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/retry"
	"github.com/sandevgo/chatgate/pkg/srv"
)

// Store owns the per-user state map. Users are created lazily on first
// write and removed only by Cleanup.
type Store struct {
	mu    sync.RWMutex
	users map[string]*UserState

	// repo is nil for a volatile store.
	repo    core.StateRepository
	retrier *retry.Retrier
	now     Clock
}

func NewStore(repo core.StateRepository, opts ...Option) *Store {
	o := buildOptions(opts)
	return &Store{
		users: make(map[string]*UserState),
		repo:  repo,
		retrier: retry.NewRetrier(&retry.Config{
			MaxRetries:    3,
			BackoffFactor: 2,
			InitialDelay:  100 * time.Millisecond,
			MaxDelay:      2 * time.Second,
			Jitter:        50 * time.Millisecond,
		}),
		now: o.now,
	}
}

// Init loads persisted state. Documents that fail to decode are skipped.
func (s *Store) Init(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	docs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load user state: %w", err)
	}

	skipped := s.Load(ctx, docs)
	log.FromCtx(ctx).Info().
		Int("users", len(docs)-skipped).
		Int("skipped", skipped).
		Msg("user state loaded")
	return nil
}

// LoadUser loads only userID's state when the repository supports
// single-user reads and falls back to Init otherwise.
func (s *Store) LoadUser(ctx context.Context, userID string) error {
	reader, ok := s.repo.(core.UserStateReader)
	if !ok {
		return s.Init(ctx)
	}

	doc, err := reader.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user state: %w", err)
	}
	docs := map[string]json.RawMessage{}
	if doc != nil {
		docs[userID] = doc
	}
	s.Load(ctx, docs)
	return nil
}

// Load replaces the in-memory map with docs and returns how many
// documents were skipped as undecodable.
func (s *Store) Load(ctx context.Context, docs map[string]json.RawMessage) int {
	users := make(map[string]*UserState, len(docs))
	skipped := 0
	for userID, raw := range docs {
		u := &UserState{}
		if err := json.Unmarshal(raw, u); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Str("user_id", userID).Msg("skipping undecodable user state")
			skipped++
			continue
		}
		users[userID] = u
	}

	s.mu.Lock()
	s.users = users
	s.mu.Unlock()
	return skipped
}

// Marshal encodes every user's state as one JSON document per user ID.
func (s *Store) Marshal() (map[string]json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make(map[string]json.RawMessage, len(s.users))
	for userID, u := range s.users {
		raw, err := json.Marshal(u)
		if err != nil {
			return nil, fmt.Errorf("marshal user %s: %w", userID, err)
		}
		docs[userID] = raw
	}
	return docs, nil
}

// Save writes a snapshot to the repository. The lock is released before
// the repository is called.
func (s *Store) Save(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	docs, err := s.Marshal()
	if err != nil {
		return err
	}

	err = s.retrier.Do(ctx, func() error {
		return s.repo.SaveAll(ctx, docs)
	})
	if err != nil {
		return fmt.Errorf("save user state: %w", err)
	}

	log.FromCtx(ctx).Debug().Int("users", len(docs)).Msg("user state saved")
	return nil
}

// Autosave saves every interval and once more on shutdown.
func (s *Store) Autosave(interval time.Duration) srv.Service {
	return srv.NewPeriodic("autosave", interval, func(ctx context.Context) {
		if err := s.Save(ctx); err != nil {
			log.FromCtx(ctx).Error().Err(err).Msg("autosave failed")
		}
	}).OnShutdown(s.Save)
}

// User returns a copy of the user's state.
func (s *Store) User(userID string) (UserState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return UserState{}, false
	}
	return u.clone(), true
}

// Users lists known user IDs in sorted order.
func (s *Store) Users() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// Cleanup removes users whose last activity is older than maxAge.
// Users for which skip returns true are kept.
func (s *Store) Cleanup(maxAge time.Duration, skip func(userID string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for userID, u := range s.users {
		if skip != nil && skip(userID) {
			continue
		}
		if now.Sub(u.LastActivity()) > maxAge {
			delete(s.users, userID)
			removed++
		}
	}
	return removed
}

// update runs fn on the user's state under the write lock, creating it
// if needed. fn must not block.
func (s *Store) update(userID string, fn func(u *UserState)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		u = &UserState{}
		s.users[userID] = u
	}
	fn(u)
}

// view runs fn under the read lock. It reports false for unknown users.
func (s *Store) view(userID string, fn func(u *UserState)) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return false
	}
	fn(u)
	return true
}
