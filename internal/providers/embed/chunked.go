package embed

import (
	"context"
	"fmt"

	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
	"github.com/sandevgo/chatgate/pkg/tokens"
)

const defaultMaxChunks = 4

// Chunked fits text to the model's input window: it embeds up to
// maxChunks token-bounded chunks and averages them into one vector.
type Chunked struct {
	next      core.Embedder
	budget    *tokens.Budget
	maxChunks int
}

func NewChunked(next core.Embedder, budget *tokens.Budget) *Chunked {
	return &Chunked{
		next:      next,
		budget:    budget,
		maxChunks: defaultMaxChunks,
	}
}

func (c *Chunked) Embed(ctx context.Context, text string) ([]float32, error) {
	chunks := ChunkText(text, c.budget)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("nothing to embed")
	}
	if len(chunks) > c.maxChunks {
		log.FromCtx(ctx).Debug().
			Int("chunks", len(chunks)).
			Int("kept", c.maxChunks).
			Msg("embedding input truncated")
		chunks = chunks[:c.maxChunks]
	}

	if len(chunks) == 1 {
		return c.next.Embed(ctx, chunks[0])
	}

	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := c.next.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("embed chunk: %w", err)
		}
		vectors = append(vectors, vec)
	}
	return MeanPool(vectors), nil
}
