package responder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/internal/service/gate"
	"github.com/sandevgo/chatgate/internal/service/memory"
	"github.com/sandevgo/chatgate/pkg/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeReplier struct {
	mu      sync.Mutex
	replies []string
	typing  int
	err     error
}

func (r *fakeReplier) Reply(ctx context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, text)
	return r.err
}

func (r *fakeReplier) SendTyping(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typing++
	return nil
}

func (r *fakeReplier) Replies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}

func (r *fakeReplier) Typing() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.typing
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	block   chan struct{}
	started chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	block, started, reply, err := g.block, g.started, g.reply, g.err
	g.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return reply, err
}

func (g *fakeGenerator) Prompts() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

type vectorEmbedder map[string][]float32

func (e vectorEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e[text]; ok {
		return v, nil
	}
	return nil, errors.New("unknown text")
}

type fixture struct {
	clk   *fakeClock
	gate  *gate.Gate
	quota *gate.DailyQuota
	conv  *memory.Conversation
	gen   *fakeGenerator
	out   *fakeReplier
	r     *Responder
}

func newFixture(t *testing.T, embedder core.Embedder, mutate func(*config.BotConfig)) *fixture {
	t.Helper()

	clk := &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
	cfg := &config.BotConfig{
		PersonaName:    "Mizu",
		IgnorePrefix:   "!",
		TypingInterval: time.Hour,
		RecallTopK:     3,
	}
	if mutate != nil {
		mutate(cfg)
	}

	memCfg := &config.MemoryConfig{
		MaxMessages:     50,
		MaxTurns:        20,
		MaxEmbeddings:   200,
		ProfileEvery:    100,
		ProfileInterval: 24 * time.Hour,
	}
	store := memory.NewStore(nil, memory.WithClock(clk.Now))
	// Profile synthesis gets its own generator so prompts below are the responder's only.
	conv := memory.NewConversation(store, &fakeGenerator{reply: "{}"}, embedder, memCfg,
		memory.WithAgentName(cfg.PersonaName))

	g := gate.New(gate.DefaultConfig(), gate.WithClock(clk.Now))
	quota := gate.NewDailyQuota(5, gate.WithClock(clk.Now))
	gen := &fakeGenerator{reply: "hello back"}
	persona := NewPersona(filepath.Join(t.TempDir(), "PERSONA.md"), cfg.PersonaName)

	return &fixture{
		clk:   clk,
		gate:  g,
		quota: quota,
		conv:  conv,
		gen:   gen,
		out:   &fakeReplier{},
		r:     New(cfg, g, quota, conv, gen, persona, tokens.NewBudget(0)),
	}
}

func event(id, user, content string) core.Event {
	return core.Event{ID: id, AuthorID: user, ChannelID: "c1", Content: content}
}

func TestHandle_HappyPath(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "hi there"), f.out))

	assert.Equal(t, []string{"hello back"}, f.out.Replies())
	assert.GreaterOrEqual(t, f.out.Typing(), 1)

	used, limit := f.quota.Usage()
	assert.Equal(t, 1, used)
	assert.Equal(t, 5, limit)

	assert.False(t, f.gate.InFlight("u1"))
	turns := f.conv.History().RecentTurns("u1", 5)
	require.Len(t, turns, 1)
	assert.Equal(t, "hi there", turns[0].UserMessage)
	assert.Equal(t, "hello back", turns[0].AgentResponse)
}

func TestHandle_Ignored(t *testing.T) {
	tests := []struct {
		name string
		ev   core.Event
	}{
		{name: "own message", ev: core.Event{ID: "m1", AuthorID: "bot", Content: "hi", IsFromSelf: true}},
		{name: "empty", ev: event("m1", "u1", "   ")},
		{name: "prefixed", ev: event("m1", "u1", "!ignore me")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			require.NoError(t, f.r.Handle(context.Background(), tt.ev, f.out))
			assert.Empty(t, f.out.Replies())
			assert.False(t, f.gate.InFlight(tt.ev.AuthorID))
			assert.Empty(t, f.conv.History().RecentMessages(tt.ev.AuthorID, 10))
			assert.Empty(t, f.gen.Prompts())
		})
	}
}

func TestHandle_InFlightThenRedelivery(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	f.gen.block = make(chan struct{})
	f.gen.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- f.r.Handle(ctx, event("m1", "u1", "first"), f.out)
	}()
	<-f.gen.started

	second := &fakeReplier{}
	require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "second"), second))
	assert.Equal(t, []string{msgInFlight}, second.Replies())

	redelivered := &fakeReplier{}
	require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "second"), redelivered))
	assert.Empty(t, redelivered.Replies(), "a redelivered rejection stays silent")

	close(f.gen.block)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"hello back"}, f.out.Replies())
}

func TestHandle_Cooldown(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "first"), f.out))

	f.clk.Advance(500 * time.Millisecond)
	out := &fakeReplier{}
	require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "next"), out))

	require.Len(t, out.Replies(), 1)
	assert.Contains(t, out.Replies()[0], "3 seconds")
}

func TestHandle_Duplicate(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "same text"), f.out))

	out := &fakeReplier{}
	require.NoError(t, f.r.Handle(ctx, event("m2", "u2", "same text"), out))
	assert.Equal(t, []string{msgDuplicate}, out.Replies())
}

func TestHandle_Previous(t *testing.T) {
	t.Run("no previous message", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		require.NoError(t, f.r.Handle(context.Background(), event("m1", "u1", "what was my previous message?"), f.out))
		assert.Equal(t, []string{msgNoPrevious}, f.out.Replies())
		assert.Empty(t, f.gen.Prompts())
	})

	t.Run("with previous message", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		ctx := context.Background()

		require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "I like tea"), f.out))
		f.clk.Advance(time.Minute)

		out := &fakeReplier{}
		require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "Previous message please"), out))
		assert.Equal(t, []string{`Your previous message was: "I like tea"`}, out.Replies())
		assert.Len(t, f.gen.Prompts(), 1)

		used, _ := f.quota.Usage()
		assert.Equal(t, 1, used, "the shortcut does not spend quota")
	})
}

func TestHandle_QuotaExhausted(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	f.quota.Exhaust()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "hello"), f.out))

	require.Len(t, f.out.Replies(), 1)
	assert.Contains(t, f.out.Replies()[0], "daily API quota")
	assert.Contains(t, f.out.Replies()[0], "12 hours 0 minutes")
	assert.Empty(t, f.gen.Prompts())
}

func TestHandle_GenerationErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantReply string
		contains  string
		wantSpent bool
	}{
		{
			name:      "rate limited",
			err:       fmt.Errorf("openai: %w", core.ErrRateLimited),
			contains:  "daily API quota",
			wantSpent: true,
		},
		{
			name:      "overloaded",
			err:       fmt.Errorf("anthropic: %w", core.ErrOverloaded),
			wantReply: msgOverloaded,
		},
		{
			name:      "internal",
			err:       fmt.Errorf("gemini: %w", core.ErrBackendInternal),
			wantReply: msgInternal,
		},
		{
			name:     "other",
			err:      errors.New("connection reset"),
			contains: "An error occurred: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, nil)
			f.gen.err = tt.err

			err := f.r.Handle(context.Background(), event("m1", "u1", "hello"), f.out)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			require.Len(t, f.out.Replies(), 1)
			if tt.wantReply != "" {
				assert.Equal(t, tt.wantReply, f.out.Replies()[0])
			}
			if tt.contains != "" {
				assert.Contains(t, f.out.Replies()[0], tt.contains)
			}

			assert.False(t, f.gate.InFlight("u1"))
			assert.Equal(t, !tt.wantSpent, f.quota.Allow())
			assert.Empty(t, f.conv.History().RecentTurns("u1", 5))
		})
	}
}

func TestHandle_PromptContents(t *testing.T) {
	embedder := vectorEmbedder{
		"I love green tea":     {1, 0},
		"my cat is called Ash": {0, 1},
		"recommend a tea":      {1, 0.1},
	}
	f := newFixture(t, embedder, func(c *config.BotConfig) { c.IndexMessages = true })
	ctx := context.Background()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "I love green tea"), f.out))
	f.clk.Advance(time.Minute)
	require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "my cat is called Ash"), f.out))
	f.clk.Advance(time.Minute)
	require.NoError(t, f.r.Handle(ctx, event("m3", "u1", "recommend a tea"), f.out))

	prompts := f.gen.Prompts()
	require.Len(t, prompts, 3)
	p := prompts[2]

	assert.Contains(t, p, "You are Mizu")
	assert.Contains(t, p, "Things the user said before that may be relevant:\n- I love green tea")
	assert.Contains(t, p, `Recent user messages (learn from these to understand the user):`)
	assert.Contains(t, p, `User: "I love green tea" → Mizu: "hello back"`)
	assert.Contains(t, p, "Please answer this message: recommend a tea")
	assert.NotContains(t, p, "- recommend a tea")

	state, ok := f.conv.Store().User("u1")
	require.True(t, ok)
	assert.Len(t, state.Embeddings, 3)
}

func TestHandle_TypingKeepalive(t *testing.T) {
	f := newFixture(t, nil, func(c *config.BotConfig) { c.TypingInterval = 5 * time.Millisecond })
	f.gen.block = make(chan struct{})
	f.gen.started = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- f.r.Handle(context.Background(), event("m1", "u1", "slow one"), f.out)
	}()
	<-f.gen.started

	assert.Eventually(t, func() bool { return f.out.Typing() >= 3 }, time.Second, time.Millisecond)
	close(f.gen.block)
	require.NoError(t, <-done)

	after := f.out.Typing()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, f.out.Typing(), "typing stops with the reply")
}

func TestHandle_DeliveryFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.out.err = errors.New("chat not found")

	err := f.r.Handle(context.Background(), event("m1", "u1", "hello"), f.out)
	require.Error(t, err)

	used, _ := f.quota.Usage()
	assert.Zero(t, used)
	assert.Empty(t, f.conv.History().RecentTurns("u1", 5))
	assert.False(t, f.gate.InFlight("u1"))
}

type stubCommands map[string]string

func (c stubCommands) Execute(ctx context.Context, userID, input string) (string, bool) {
	reply, ok := c[input]
	return reply, ok
}

func TestHandle_Commands(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.r.WithCommands(stubCommands{"/quota": "used 0"})
	ctx := context.Background()

	require.NoError(t, f.r.Handle(ctx, event("m1", "u1", "/quota"), f.out))
	assert.Equal(t, []string{"used 0"}, f.out.Replies())
	assert.Empty(t, f.gen.Prompts())
	assert.Empty(t, f.conv.History().RecentMessages("u1", 10), "commands are not remembered")

	used, _ := f.quota.Usage()
	assert.Zero(t, used)

	out := &fakeReplier{}
	require.NoError(t, f.r.Handle(ctx, event("m2", "u1", "/quota"), out))
	require.Len(t, out.Replies(), 1)
	assert.Contains(t, out.Replies()[0], "seconds", "commands are still rate limited")
}
