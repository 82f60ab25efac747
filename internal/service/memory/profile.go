package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
)

const (
	profileMessages = 20
	profileTurns    = 10
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseUpdating
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseUpdating:
		return "updating"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Synthesizer rebuilds a user's profile from recent history through the
// generator, at most one synthesis per user at a time.
type Synthesizer struct {
	store    *Store
	history  *History
	gen      core.Generator
	every    int
	interval time.Duration

	mu       sync.Mutex
	updating map[string]struct{}
}

func NewSynthesizer(store *Store, history *History, gen core.Generator, cfg *config.MemoryConfig) *Synthesizer {
	return &Synthesizer{
		store:    store,
		history:  history,
		gen:      gen,
		every:    cfg.ProfileEvery,
		interval: cfg.ProfileInterval,
		updating: make(map[string]struct{}),
	}
}

// NoteMessage advances the user's update cadence by one message. The
// interval clock starts at the first message seen.
func (s *Synthesizer) NoteMessage(userID string) {
	now := s.store.now()
	s.store.update(userID, func(u *UserState) {
		u.ProfileUpdate.MessagesSinceUpdate++
		if u.ProfileUpdate.LastUpdated.IsZero() {
			u.ProfileUpdate.LastUpdated = now
		}
	})
}

func (s *Synthesizer) due(p ProfileUpdateState, now time.Time) bool {
	if s.every > 0 && p.MessagesSinceUpdate >= s.every {
		return true
	}
	return !p.LastUpdated.IsZero() && now.Sub(p.LastUpdated) > s.interval
}

// dueLocked must be called with mu held.
func (s *Synthesizer) dueLocked(userID string) bool {
	due := false
	now := s.store.now()
	s.store.view(userID, func(u *UserState) {
		due = s.due(u.ProfileUpdate, now)
	})
	return due
}

func (s *Synthesizer) Phase(userID string) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.updating[userID]; busy {
		return PhaseUpdating
	}
	if s.dueLocked(userID) {
		return PhasePending
	}
	return PhaseIdle
}

// MaybeUpdate synthesizes a new profile when the cadence says so and
// reports whether the profile was replaced. Failures leave the profile
// and the cadence counters untouched.
func (s *Synthesizer) MaybeUpdate(ctx context.Context, userID string) bool {
	s.mu.Lock()
	if _, busy := s.updating[userID]; busy || !s.dueLocked(userID) {
		s.mu.Unlock()
		return false
	}
	s.updating[userID] = struct{}{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.updating, userID)
		s.mu.Unlock()
	}()

	logger := log.FromCtx(ctx).With().Str("user_id", userID).Logger()

	prompt := buildProfilePrompt(
		s.history.RecentMessages(userID, profileMessages),
		s.history.RecentTurns(userID, profileTurns),
	)

	resp, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn().Err(err).Msg("profile synthesis failed")
		return false
	}

	profile, err := parseProfile(resp)
	if err != nil {
		logger.Warn().Err(err).Msg("profile response rejected")
		return false
	}

	now := s.store.now()
	profile.LastUpdated = now
	s.store.update(userID, func(u *UserState) {
		u.Profile = profile
		u.ProfileUpdate = ProfileUpdateState{LastUpdated: now}
	})

	logger.Info().Int("facts", len(profile.Facts)).Msg("profile updated")
	return true
}

// Profile returns a copy of the user's profile or nil.
func (s *Synthesizer) Profile(userID string) *Profile {
	var p *Profile
	s.store.view(userID, func(u *UserState) {
		p = u.Profile.clone()
	})
	return p
}

// ProfileText renders the profile for prompts and diagnostics. It is
// empty when nothing has been learned yet.
func (s *Synthesizer) ProfileText(userID string) string {
	return FormatProfile(s.Profile(userID))
}

func FormatProfile(p *Profile) string {
	if p == nil {
		return ""
	}

	var b strings.Builder
	line := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteByte('\n')
	}

	line("Name", p.Name)
	line("Preferences", strings.Join(p.Preferences, ", "))
	line("Dislikes", strings.Join(p.Dislikes, ", "))
	line("Facts", strings.Join(p.Facts, "; "))
	line("Tone tips", strings.Join(p.ToneTips, "; "))
	line("Summary", p.Summary)
	if !p.LastUpdated.IsZero() {
		line("Last updated", p.LastUpdated.Format(time.DateTime))
	}
	return strings.TrimRight(b.String(), "\n")
}

func buildProfilePrompt(messages []MessageRecord, turns []ConversationTurn) string {
	var b strings.Builder
	for i, m := range messages {
		fmt.Fprintf(&b, "[%d] %q\n", i+1, m.Content)
	}
	fmtMessages := b.String()

	b.Reset()
	for i, t := range turns {
		fmt.Fprintf(&b, "[%d] User: %q / Reply: %q\n", i+1, t.UserMessage, t.AgentResponse)
	}
	fmtTurns := b.String()

	return fmt.Sprintf(
		`Build a profile of the user from their messages. Output only one JSON object with exactly these keys: {"name": string or null, "preferences": [string], "dislikes": [string], "facts": [string], "toneTips": [string], "summary": string}. Rules: 1. Only include what the user actually said or clearly implied. 2. toneTips describe how to talk to this user. 3. summary is at most two sentences.
User messages:
%s
Recent conversation:
%s`,
		fmtMessages, fmtTurns,
	)
}

func parseProfile(content string) (*Profile, error) {
	jsonStr := extractJSONObject(content)
	if jsonStr == "" {
		return nil, core.ErrNoJSON
	}

	var p Profile
	if err := json.Unmarshal([]byte(jsonStr), &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	return &p, nil
}

// extractJSONObject returns the text between the first '{' and the last '}'.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(content[start:], "}")
	if end == -1 {
		return ""
	}

	return content[start : start+end+1]
}
