package embed

import (
	"context"
	"fmt"
)

// OpenAI calls an OpenAI-compatible /v1/embeddings endpoint.
type OpenAI struct {
	client
}

func NewOpenAI(baseURL, apiKey, model string) *OpenAI {
	return &OpenAI{client: newClient(baseURL, "https://api.openai.com", apiKey, model)}
}

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model": o.model,
		"input": text,
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := o.post(ctx, "/v1/embeddings", payload, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding")
	}
	return result.Data[0].Embedding, nil
}
