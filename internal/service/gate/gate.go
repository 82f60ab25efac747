package gate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandevgo/chatgate/pkg/log"
)

type Reason int

const (
	ReasonNone Reason = iota
	ReasonAlreadyResponded
	ReasonOnCooldown
	ReasonInFlight
	ReasonDuplicateContent
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonAlreadyResponded:
		return "already_responded"
	case ReasonOnCooldown:
		return "on_cooldown"
	case ReasonInFlight:
		return "in_flight"
	case ReasonDuplicateContent:
		return "duplicate_content"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Decision is the outcome of Admit. Remaining is set for ReasonOnCooldown.
type Decision struct {
	Admitted  bool
	Reason    Reason
	Remaining time.Duration
}

func admitted() Decision {
	return Decision{Admitted: true}
}

func rejected(reason Reason) Decision {
	return Decision{Reason: reason}
}

type Config struct {
	Cooldown     time.Duration
	DedupTTL     time.Duration
	RespondedTTL time.Duration
}

func DefaultConfig() Config {
	return Config{
		Cooldown:     3 * time.Second,
		DedupTTL:     10 * time.Second,
		RespondedTTL: 30 * time.Second,
	}
}

// Gate decides whether an incoming message may proceed to generation.
type Gate struct {
	// mu makes the check sequence and the acquire in Admit one step.
	mu        sync.Mutex
	cooldown  *Cooldown
	inflight  *SingleFlight
	responded *TTLSet
	sent      *TTLSet
}

func New(cfg Config, opts ...Option) *Gate {
	def := DefaultConfig()
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}
	if cfg.DedupTTL <= 0 {
		cfg.DedupTTL = def.DedupTTL
	}
	if cfg.RespondedTTL <= 0 {
		cfg.RespondedTTL = def.RespondedTTL
	}

	return &Gate{
		cooldown:  NewCooldown(cfg.Cooldown, opts...),
		inflight:  NewSingleFlight(),
		responded: NewTTLSet(cfg.RespondedTTL, opts...),
		sent:      NewTTLSet(cfg.DedupTTL, opts...),
	}
}

// Admit runs the admission checks in order; the first match wins.
// On Admitted the caller holds the user's slot and must call Release.
func (g *Gate) Admit(userID, content, messageID string) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.responded.Contains(messageID) {
		return rejected(ReasonAlreadyResponded)
	}
	if remaining := g.cooldown.Remaining(userID); remaining > 0 {
		d := rejected(ReasonOnCooldown)
		d.Remaining = remaining
		return d
	}
	if g.inflight.Held(userID) {
		return rejected(ReasonInFlight)
	}
	if g.sent.Contains(content) {
		return rejected(ReasonDuplicateContent)
	}

	if !g.inflight.TryAcquire(userID) {
		return rejected(ReasonInFlight)
	}
	// Marked before processing so a redelivery mid-flight is ignored.
	g.responded.Add(messageID)
	return admitted()
}

// Release starts the user's cooldown and frees the slot. The cooldown
// counts from completion, not arrival. Releasing a slot that is not held
// changes nothing.
func (g *Gate) Release(ctx context.Context, userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.inflight.Release(userID) {
		log.FromCtx(ctx).Error().
			Str("user_id", userID).
			Msg("release of an admission slot that was not held")
		return
	}
	g.cooldown.Touch(userID)
}

// Run calls fn only when the message is admitted and releases the slot
// on every exit path, panics included.
func (g *Gate) Run(ctx context.Context, userID, content, messageID string, fn func(ctx context.Context) error) (Decision, error) {
	d := g.Admit(userID, content, messageID)
	if !d.Admitted {
		return d, nil
	}
	defer g.Release(ctx, userID)

	return d, fn(ctx)
}

// MarkResponded records a reply for messageID outside the admitted path,
// e.g. after answering a rejection.
func (g *Gate) MarkResponded(messageID string) {
	g.responded.Add(messageID)
}

// MarkSent suppresses identical content for the dedup window.
func (g *Gate) MarkSent(content string) {
	g.sent.Add(content)
}

func (g *Gate) InFlight(userID string) bool {
	return g.inflight.Held(userID)
}

func (g *Gate) CooldownWindow() time.Duration {
	return g.cooldown.Window()
}

// SweepStats reports what a Sweep removed.
type SweepStats struct {
	Cooldowns int
	Responded int
	Sent      int
}

// Sweep purges expired TTL entries and cooldowns older than twice the
// window. In-flight flags are never touched.
func (g *Gate) Sweep() SweepStats {
	return SweepStats{
		Cooldowns: g.cooldown.Sweep(2 * g.cooldown.Window()),
		Responded: g.responded.Sweep(),
		Sent:      g.sent.Sweep(),
	}
}
