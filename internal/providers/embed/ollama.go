package embed

import (
	"context"
	"fmt"
)

type Ollama struct {
	client
}

func NewOllama(baseURL, apiKey, model string) *Ollama {
	return &Ollama{client: newClient(baseURL, "http://localhost:11434", apiKey, model)}
}

func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": o.model,
		"input": text,
	}

	var result struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := o.post(ctx, "/api/embed", payload, &result); err != nil {
		return nil, err
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return result.Embeddings[0], nil
}
