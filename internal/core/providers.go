package core

import "context"

// Generator is the text-generation backend.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder returns one flat vector per text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Replier delivers output for one inbound event.
type Replier interface {
	Reply(ctx context.Context, text string) error
	// SendTyping is advisory and may be called repeatedly.
	SendTyping(ctx context.Context) error
}
