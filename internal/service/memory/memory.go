package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
)

const (
	contextMessages = 10
	contextTurns    = 5

	synthesisTimeout = 2 * time.Minute
)

// Conversation is the memory facade used by the responder.
type Conversation struct {
	store     *Store
	history   *History
	index     *Index
	synth     *Synthesizer
	agentName string

	wg sync.WaitGroup
}

func NewConversation(
	store *Store,
	gen core.Generator,
	embedder core.Embedder,
	cfg *config.MemoryConfig,
	opts ...ConversationOption,
) *Conversation {
	o := buildConversationOptions(opts)
	history := NewHistory(store, cfg)
	return &Conversation{
		store:     store,
		history:   history,
		index:     NewIndex(store, embedder, cfg),
		synth:     NewSynthesizer(store, history, gen, cfg),
		agentName: o.agentName,
	}
}

func (c *Conversation) Store() *Store             { return c.store }
func (c *Conversation) History() *History         { return c.history }
func (c *Conversation) Index() *Index             { return c.index }
func (c *Conversation) Synthesizer() *Synthesizer { return c.synth }

// Record stores an inbound message and starts a profile synthesis in the
// background when one is due. The synthesis outlives ctx cancellation.
func (c *Conversation) Record(ctx context.Context, userID, content string) {
	c.history.AppendMessage(userID, content)
	c.synth.NoteMessage(userID)

	if c.synth.Phase(userID) != PhasePending {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), synthesisTimeout)
		defer cancel()
		c.synth.MaybeUpdate(bg, userID)
	}()
}

// Commit stores a completed exchange. It never indexes embeddings.
func (c *Conversation) Commit(userID, message, response string) {
	c.history.AppendTurn(userID, message, response)
}

// ContextFor renders the recent raw messages and turns for a prompt.
func (c *Conversation) ContextFor(userID string) string {
	messages := c.history.RecentMessages(userID, contextMessages)
	turns := c.history.RecentTurns(userID, contextTurns)

	var parts []string
	if len(messages) > 0 {
		var b strings.Builder
		b.WriteString("Recent user messages (learn from these to understand the user): ")
		for i, m := range messages {
			fmt.Fprintf(&b, "[%d] %q. ", i+1, m.Content)
		}
		parts = append(parts, strings.TrimSpace(b.String()))
	}
	if len(turns) > 0 {
		var b strings.Builder
		b.WriteString("Recent conversation flow: ")
		for i, t := range turns {
			fmt.Fprintf(&b, "[%d] User: %q → %s: %q. ", i+1, t.UserMessage, c.agentName, t.AgentResponse)
		}
		parts = append(parts, strings.TrimSpace(b.String()))
	}
	return strings.Join(parts, "\n")
}

func (c *Conversation) Profile(userID string) *Profile {
	return c.synth.Profile(userID)
}

func (c *Conversation) ProfileText(userID string) string {
	return c.synth.ProfileText(userID)
}

// Wait blocks until background syntheses have finished.
func (c *Conversation) Wait() {
	c.wg.Wait()
}

func (c *Conversation) Start(ctx context.Context) error {
	return nil
}

// Shutdown waits for background syntheses until ctx expires.
func (c *Conversation) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for profile synthesis: %w", ctx.Err())
	}
}
