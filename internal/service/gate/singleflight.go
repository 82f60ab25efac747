package gate

import "sync"

// SingleFlight marks users whose message is being processed.
type SingleFlight struct {
	mu   sync.Mutex
	held map[string]struct{}
}

func NewSingleFlight() *SingleFlight {
	return &SingleFlight{held: make(map[string]struct{})}
}

// TryAcquire sets the flag for userID and reports whether it was free.
func (f *SingleFlight) TryAcquire(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.held[userID]; busy {
		return false
	}
	f.held[userID] = struct{}{}
	return true
}

// Release clears the flag. It reports false when the flag was not held.
func (f *SingleFlight) Release(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, busy := f.held[userID]; !busy {
		return false
	}
	delete(f.held, userID)
	return true
}

func (f *SingleFlight) Held(userID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, busy := f.held[userID]
	return busy
}
