package gate

import (
	"sync"
	"time"
)

// TTLSet is a set of keys that expire a fixed duration after insertion.
// Contains never reports an expired key, whether or not Sweep has run.
type TTLSet struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time // key -> expiresAt
	now     Clock
}

func NewTTLSet(ttl time.Duration, opts ...Option) *TTLSet {
	o := buildOptions(opts)
	return &TTLSet{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     o.now,
	}
}

// Add inserts key, refreshing its expiry if present.
func (s *TTLSet) Add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = s.now().Add(s.ttl)
}

func (s *TTLSet) Contains(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.entries[key]
	if !ok {
		return false
	}
	if !s.now().Before(expiresAt) {
		delete(s.entries, key)
		return false
	}
	return true
}

// Sweep physically removes expired entries and returns how many went.
func (s *TTLSet) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len counts stored entries, including expired ones not yet swept.
func (s *TTLSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
