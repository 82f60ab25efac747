package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_ContextFor(t *testing.T) {
	store := NewStore(nil, WithClock(newFakeClock().Now))
	conv := NewConversation(store, &fakeGenerator{}, nil, testConfig(), WithAgentName("Mizu"))

	assert.Empty(t, conv.ContextFor("u1"))

	conv.History().AppendMessage("u1", "hi")
	conv.History().AppendMessage("u1", "I like tea")
	conv.Commit("u1", "hi", "hello!")

	want := `Recent user messages (learn from these to understand the user): [1] "hi". [2] "I like tea".` +
		"\n" +
		`Recent conversation flow: [1] User: "hi" → Mizu: "hello!".`
	assert.Equal(t, want, conv.ContextFor("u1"))
}

func TestConversation_DefaultAgentName(t *testing.T) {
	conv := NewConversation(NewStore(nil), &fakeGenerator{}, nil, testConfig())

	conv.Commit("u1", "hi", "hello!")

	assert.Contains(t, conv.ContextFor("u1"), `User: "hi" → Assistant: "hello!"`)
}

func TestConversation_ContextForWindow(t *testing.T) {
	store := NewStore(nil)
	conv := NewConversation(store, &fakeGenerator{}, nil, testConfig())

	for i := 0; i < 12; i++ {
		conv.History().AppendMessage("u1", string(rune('a'+i)))
	}
	for i := 0; i < 7; i++ {
		conv.Commit("u1", "q", string(rune('A'+i)))
	}

	ctxText := conv.ContextFor("u1")
	assert.NotContains(t, ctxText, `"b"`)
	assert.Contains(t, ctxText, `[1] "c"`)
	assert.Contains(t, ctxText, `[10] "l"`)
	assert.NotContains(t, ctxText, `"B"`)
	assert.Contains(t, ctxText, `Assistant: "C"`)
}

func TestConversation_RecordTriggersSynthesis(t *testing.T) {
	gen := &fakeGenerator{reply: profileJSON}
	store := NewStore(nil, WithClock(newFakeClock().Now))
	conv := NewConversation(store, gen, nil, testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	for i := 0; i < 4; i++ {
		conv.Record(ctx, "u1", "message")
	}
	conv.Wait()
	assert.Equal(t, 0, gen.Calls())

	conv.Record(ctx, "u1", "fifth")
	cancel()
	conv.Wait()

	assert.Equal(t, 1, gen.Calls())
	require.NotNil(t, conv.Profile("u1"), "synthesis survives caller cancellation")
	assert.Contains(t, conv.ProfileText("u1"), "Name: An")
}

func TestConversation_CommitDoesNotIndex(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{"hi": {1}}}
	store := NewStore(nil)
	conv := NewConversation(store, &fakeGenerator{}, embedder, testConfig())

	conv.Commit("u1", "hi", "hi")

	u, ok := store.User("u1")
	require.True(t, ok)
	assert.Empty(t, u.Embeddings)
	assert.Len(t, u.Conversations, 1)
}

func TestConversation_Shutdown(t *testing.T) {
	gen := &fakeGenerator{reply: profileJSON, block: make(chan struct{})}
	conv := NewConversation(NewStore(nil), gen, nil, testConfig())
	for i := 0; i < 5; i++ {
		conv.Record(context.Background(), "u1", "m")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, conv.Shutdown(ctx), "synthesis still blocked")

	close(gen.block)
	assert.NoError(t, conv.Shutdown(context.Background()))
}
