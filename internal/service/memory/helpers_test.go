package memory

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/sandevgo/chatgate/internal/config"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)}
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

func testConfig() *config.MemoryConfig {
	return &config.MemoryConfig{
		MaxMessages:     50,
		MaxTurns:        20,
		MaxEmbeddings:   200,
		ProfileEvery:    5,
		ProfileInterval: 15 * time.Minute,
	}
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	calls   int
	prompts []string
	// block, when set, is waited on before returning.
	block chan struct{}
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	block, reply, err := g.block, g.reply, g.err
	g.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

var errEmbed = errors.New("embed failed")

// fakeEmbedder maps known texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := e.vectors[text]
	if !ok {
		return nil, errEmbed
	}
	return v, nil
}

type memRepo struct {
	mu    sync.Mutex
	docs  map[string][]byte
	fails int
	saves int
}

func (r *memRepo) LoadAll(ctx context.Context) (map[string]json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]json.RawMessage, len(r.docs))
	for k, v := range r.docs {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (r *memRepo) SaveAll(ctx context.Context, users map[string]json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if r.fails > 0 {
		r.fails--
		return errors.New("disk full")
	}
	r.docs = make(map[string][]byte, len(users))
	for k, v := range users {
		r.docs[k] = []byte(v)
	}
	return nil
}

// readerRepo adds single-user reads to memRepo.
type readerRepo struct {
	memRepo
	gets int
}

func (r *readerRepo) Get(ctx context.Context, userID string) (json.RawMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	doc, ok := r.docs[userID]
	if !ok {
		return nil, nil
	}
	return json.RawMessage(doc), nil
}
