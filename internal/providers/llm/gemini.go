package llm

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

type Gemini struct {
	baseProvider
}

func NewGemini(p Params) *Gemini {
	return &Gemini{
		baseProvider: newBaseProvider(p, "https://generativelanguage.googleapis.com"),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
	}

	headers := map[string]string{
		"x-goog-api-key": g.apiKey,
	}

	var result struct {
		Candidates []struct {
			Content      geminiContent `json:"content"`
			FinishReason string        `json:"finishReason"`
		} `json:"candidates"`
	}
	path := "/v1beta/models/" + url.PathEscape(g.model) + ":generateContent"
	if err := g.post(ctx, path, payload, headers, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty candidates")
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String(), nil
}
