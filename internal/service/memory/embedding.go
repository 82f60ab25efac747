package memory

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/sandevgo/chatgate/internal/config"
	"github.com/sandevgo/chatgate/internal/core"
	"github.com/sandevgo/chatgate/pkg/log"
)

// Index is a per-user vector index over remembered text.
type Index struct {
	store      *Store
	embedder   core.Embedder
	maxEntries int
}

// NewIndex returns an index; a nil embedder turns it into a no-op.
func NewIndex(store *Store, embedder core.Embedder, cfg *config.MemoryConfig) *Index {
	return &Index{
		store:      store,
		embedder:   embedder,
		maxEntries: cfg.MaxEmbeddings,
	}
}

func (x *Index) Enabled() bool {
	return x.embedder != nil
}

// Index embeds text and stores it. Embedding failures and vectors whose
// dimension differs from the user's existing entries are logged and
// dropped.
func (x *Index) Index(ctx context.Context, userID, text string) {
	if x.embedder == nil || text == "" {
		return
	}
	logger := log.FromCtx(ctx).With().Str("user_id", userID).Logger()

	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn().Err(err).Msg("embedding failed, entry not indexed")
		return
	}
	if len(vec) == 0 {
		logger.Warn().Msg("embedder returned an empty vector, entry not indexed")
		return
	}

	entry := EmbeddingEntry{Text: text, Vector: vec, Timestamp: x.store.now()}
	x.store.update(userID, func(u *UserState) {
		if len(u.Embeddings) > 0 {
			if want := len(u.Embeddings[0].Vector); want != len(vec) {
				logger.Error().
					Int("want_dim", want).
					Int("got_dim", len(vec)).
					Msg("embedding dimension mismatch, entry not indexed")
				return
			}
		}
		u.Embeddings = pushBounded(u.Embeddings, entry, x.maxEntries)
	})
}

type scored struct {
	text  string
	score float64
	pos   int
}

// Search returns up to topK stored texts most similar to query, best
// first. Equal scores prefer the newer entry.
func (x *Index) Search(ctx context.Context, userID, query string, topK int) []string {
	if x.embedder == nil || topK <= 0 {
		return nil
	}

	var entries []EmbeddingEntry
	x.store.view(userID, func(u *UserState) {
		entries = slices.Clone(u.Embeddings)
	})
	if len(entries) == 0 {
		return nil
	}

	qvec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("user_id", userID).Msg("query embedding failed")
		return nil
	}

	results := make([]scored, len(entries))
	for i, e := range entries {
		results[i] = scored{text: e.Text, score: cosine(qvec, e.Vector), pos: i}
	}
	slices.SortFunc(results, func(a, b scored) int {
		if c := cmp.Compare(b.score, a.score); c != 0 {
			return c
		}
		return cmp.Compare(b.pos, a.pos)
	})

	if topK > len(results) {
		topK = len(results)
	}
	out := make([]string, topK)
	for i := range out {
		out[i] = results[i].text
	}
	return out
}

// cosine is -1 for empty or differently sized vectors. A zero norm
// leaves the dot product undivided.
func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return -1
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		denom = 1
	}
	return dot / denom
}
