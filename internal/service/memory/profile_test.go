package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const profileJSON = `Sure! Here it is:
{"name": "An", "preferences": ["green tea"], "dislikes": ["spam"], "facts": ["lives in Hanoi"], "toneTips": ["keep it casual"], "summary": "Tea lover from Hanoi."}
Hope this helps.`

type synthFixture struct {
	clk     *fakeClock
	store   *Store
	history *History
	gen     *fakeGenerator
	synth   *Synthesizer
}

func newSynthFixture() *synthFixture {
	clk := newFakeClock()
	store := NewStore(nil, WithClock(clk.Now))
	history := NewHistory(store, testConfig())
	gen := &fakeGenerator{}
	return &synthFixture{
		clk:     clk,
		store:   store,
		history: history,
		gen:     gen,
		synth:   NewSynthesizer(store, history, gen, testConfig()),
	}
}

func (f *synthFixture) say(userID string, n int) {
	for i := 0; i < n; i++ {
		f.history.AppendMessage(userID, "hello there")
		f.synth.NoteMessage(userID)
	}
}

func (f *synthFixture) updateState(userID string) ProfileUpdateState {
	u, _ := f.store.User(userID)
	return u.ProfileUpdate
}

func TestSynthesizer_NonJSONResponseKeepsCounters(t *testing.T) {
	f := newSynthFixture()
	f.gen.reply = "I'm sorry, I can't help with that."
	f.say("u1", 5)

	assert.False(t, f.synth.MaybeUpdate(context.Background(), "u1"))

	assert.Equal(t, 1, f.gen.Calls())
	assert.Nil(t, f.synth.Profile("u1"))
	assert.Equal(t, 5, f.updateState("u1").MessagesSinceUpdate)
	assert.Equal(t, PhasePending, f.synth.Phase("u1"), "next trigger retries")
}

func TestSynthesizer_GeneratorErrorKeepsCounters(t *testing.T) {
	f := newSynthFixture()
	f.gen.err = errors.New("backend down")
	f.say("u1", 6)

	assert.False(t, f.synth.MaybeUpdate(context.Background(), "u1"))
	assert.Equal(t, 6, f.updateState("u1").MessagesSinceUpdate)
}

func TestSynthesizer_Success(t *testing.T) {
	f := newSynthFixture()
	f.gen.reply = profileJSON
	f.say("u1", 5)
	f.clk.Advance(time.Minute)

	require.True(t, f.synth.MaybeUpdate(context.Background(), "u1"))

	want := &Profile{
		Name:        "An",
		Preferences: []string{"green tea"},
		Dislikes:    []string{"spam"},
		Facts:       []string{"lives in Hanoi"},
		ToneTips:    []string{"keep it casual"},
		Summary:     "Tea lover from Hanoi.",
		LastUpdated: f.clk.Now(),
	}
	assert.Equal(t, want, f.synth.Profile("u1"))
	assert.Equal(t, ProfileUpdateState{LastUpdated: f.clk.Now()}, f.updateState("u1"))
	assert.Equal(t, PhaseIdle, f.synth.Phase("u1"))
	assert.Contains(t, f.gen.prompts[0], `"hello there"`)
}

func TestSynthesizer_ReplacesWholesale(t *testing.T) {
	f := newSynthFixture()
	f.gen.reply = profileJSON
	f.say("u1", 5)
	require.True(t, f.synth.MaybeUpdate(context.Background(), "u1"))

	f.gen.reply = `{"summary": "Changed their mind."}`
	f.say("u1", 5)
	require.True(t, f.synth.MaybeUpdate(context.Background(), "u1"))

	p := f.synth.Profile("u1")
	assert.Empty(t, p.Name)
	assert.Empty(t, p.Facts)
	assert.Equal(t, "Changed their mind.", p.Summary)
}

func TestSynthesizer_Cadence(t *testing.T) {
	tests := []struct {
		name     string
		messages int
		elapsed  time.Duration
		want     Phase
	}{
		{name: "unseen user", messages: 0, want: PhaseIdle},
		{name: "below count", messages: 4, elapsed: time.Minute, want: PhaseIdle},
		{name: "count reached", messages: 5, want: PhasePending},
		{name: "interval elapsed since first message", messages: 1, elapsed: 16 * time.Minute, want: PhasePending},
		{name: "interval not yet elapsed", messages: 1, elapsed: 15 * time.Minute, want: PhaseIdle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSynthFixture()
			f.say("u1", tt.messages)
			f.clk.Advance(tt.elapsed)

			assert.Equal(t, tt.want, f.synth.Phase("u1"))
			if tt.want == PhaseIdle {
				assert.False(t, f.synth.MaybeUpdate(context.Background(), "u1"))
				assert.Equal(t, 0, f.gen.Calls())
			}
		})
	}
}

func TestSynthesizer_ConcurrentCallsAreNoOps(t *testing.T) {
	f := newSynthFixture()
	f.gen.reply = profileJSON
	f.gen.block = make(chan struct{})
	f.say("u1", 5)

	done := make(chan bool, 1)
	go func() { done <- f.synth.MaybeUpdate(context.Background(), "u1") }()

	require.Eventually(t, func() bool {
		return f.synth.Phase("u1") == PhaseUpdating
	}, time.Second, time.Millisecond)

	assert.False(t, f.synth.MaybeUpdate(context.Background(), "u1"))
	close(f.gen.block)

	assert.True(t, <-done)
	assert.Equal(t, 1, f.gen.Calls())
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "text {\"a\":{\"b\":2}} more", want: `{"a":{"b":2}}`},
		{in: "no json here", want: ""},
		{in: "only open {", want: ""},
		{in: "} before {", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, extractJSONObject(tt.in), tt.in)
	}
}

func TestFormatProfile(t *testing.T) {
	assert.Empty(t, FormatProfile(nil))

	p := &Profile{
		Name:        "An",
		Preferences: []string{"tea", "cats"},
		Summary:     "Friendly.",
		LastUpdated: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	want := "Name: An\nPreferences: tea, cats\nSummary: Friendly.\nLast updated: 2026-03-14 12:00:00"
	assert.Equal(t, want, FormatProfile(p))
}
