package gate

import (
	"sync"
	"time"
)

// Cooldown tracks the last completed action per user.
type Cooldown struct {
	mu     sync.Mutex
	window time.Duration
	last   map[string]time.Time
	now    Clock
}

func NewCooldown(window time.Duration, opts ...Option) *Cooldown {
	o := buildOptions(opts)
	return &Cooldown{
		window: window,
		last:   make(map[string]time.Time),
		now:    o.now,
	}
}

func (c *Cooldown) Window() time.Duration {
	return c.window
}

// Touch records now as the user's last action.
func (c *Cooldown) Touch(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last[userID] = c.now()
}

// Remaining is max(0, window - elapsed). Unseen users are never on cooldown.
func (c *Cooldown) Remaining(userID string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	last, ok := c.last[userID]
	if !ok {
		return 0
	}
	remaining := c.window - c.now().Sub(last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Sweep drops entries whose last action is older than maxAge.
func (c *Cooldown) Sweep(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for userID, last := range c.last {
		if now.Sub(last) > maxAge {
			delete(c.last, userID)
			removed++
		}
	}
	return removed
}

func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
