package embed

import (
	"context"
	"encoding/json"
	"fmt"
)

// LlamaCpp calls a llama.cpp server's /embedding endpoint. With pooling
// disabled the server returns one vector per token; those are averaged.
type LlamaCpp struct {
	client
}

func NewLlamaCpp(baseURL, apiKey string) *LlamaCpp {
	return &LlamaCpp{client: newClient(baseURL, "http://localhost:8080", apiKey, "")}
}

func (l *LlamaCpp) Embed(ctx context.Context, text string) ([]float32, error) {
	var raw json.RawMessage
	if err := l.post(ctx, "/embedding", map[string]any{"content": text}, &raw); err != nil {
		return nil, err
	}

	vec, err := decodeLlamaEmbedding(raw)
	if err != nil {
		return nil, err
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return vec, nil
}

// decodeLlamaEmbedding accepts the shapes served by different llama.cpp
// versions: {"embedding": [...]}, [{"embedding": [...]}] and either of
// those with a token-level [[...], ...] embedding.
func decodeLlamaEmbedding(raw json.RawMessage) ([]float32, error) {
	type item struct {
		Embedding json.RawMessage `json:"embedding"`
	}

	var field json.RawMessage
	var list []item
	if err := json.Unmarshal(raw, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("empty embedding list")
		}
		field = list[0].Embedding
	} else {
		var single item
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil, fmt.Errorf("decode embedding: %w", err)
		}
		field = single.Embedding
	}

	var flat []float32
	if err := json.Unmarshal(field, &flat); err == nil {
		return flat, nil
	}

	var perToken [][]float32
	if err := json.Unmarshal(field, &perToken); err != nil {
		return nil, fmt.Errorf("decode embedding vector: %w", err)
	}
	return MeanPool(perToken), nil
}
