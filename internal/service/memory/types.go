package memory

import (
	"slices"
	"time"
)

type MessageRecord struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ConversationTurn struct {
	UserMessage   string    `json:"userMessage"`
	AgentResponse string    `json:"agentResponse"`
	Timestamp     time.Time `json:"timestamp"`
}

type EmbeddingEntry struct {
	Text      string    `json:"text"`
	Vector    []float32 `json:"vector"`
	Timestamp time.Time `json:"timestamp"`
}

// Profile is what the synthesizer learned about a user. It is replaced
// as a whole on every successful synthesis.
type Profile struct {
	Name        string    `json:"name,omitempty"`
	Preferences []string  `json:"preferences"`
	Dislikes    []string  `json:"dislikes"`
	Facts       []string  `json:"facts"`
	ToneTips    []string  `json:"toneTips"`
	Summary     string    `json:"summary"`
	LastUpdated time.Time `json:"lastUpdated"`
}

func (p *Profile) clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Preferences = slices.Clone(p.Preferences)
	c.Dislikes = slices.Clone(p.Dislikes)
	c.Facts = slices.Clone(p.Facts)
	c.ToneTips = slices.Clone(p.ToneTips)
	return &c
}

type ProfileUpdateState struct {
	LastUpdated         time.Time `json:"lastUpdated"`
	MessagesSinceUpdate int       `json:"messagesSinceUpdate"`
}

// UserState is everything remembered about one user.
type UserState struct {
	RawMessages   []MessageRecord    `json:"rawMessages"`
	Conversations []ConversationTurn `json:"conversations"`
	Embeddings    []EmbeddingEntry   `json:"embeddings"`
	Profile       *Profile           `json:"profile,omitempty"`
	ProfileUpdate ProfileUpdateState `json:"profileUpdate"`
}

// LastActivity is the newest timestamp across the user's records.
func (u *UserState) LastActivity() time.Time {
	var last time.Time
	bump := func(t time.Time) {
		if t.After(last) {
			last = t
		}
	}
	if n := len(u.RawMessages); n > 0 {
		bump(u.RawMessages[n-1].Timestamp)
	}
	if n := len(u.Conversations); n > 0 {
		bump(u.Conversations[n-1].Timestamp)
	}
	if n := len(u.Embeddings); n > 0 {
		bump(u.Embeddings[n-1].Timestamp)
	}
	return last
}

func (u *UserState) clone() UserState {
	c := UserState{
		RawMessages:   slices.Clone(u.RawMessages),
		Conversations: slices.Clone(u.Conversations),
		Embeddings:    make([]EmbeddingEntry, len(u.Embeddings)),
		Profile:       u.Profile.clone(),
		ProfileUpdate: u.ProfileUpdate,
	}
	for i, e := range u.Embeddings {
		e.Vector = slices.Clone(e.Vector)
		c.Embeddings[i] = e
	}
	return c
}
