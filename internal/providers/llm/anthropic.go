package llm

import (
	"context"
	"strings"
)

const anthropicVersion = "2023-06-01"

type Anthropic struct {
	baseProvider
}

func NewAnthropic(p Params) *Anthropic {
	return &Anthropic{
		baseProvider: newBaseProvider(p, "https://api.anthropic.com"),
	}
}

func (a *Anthropic) Generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":      a.model,
		"max_tokens": 4096,
		"messages":   []chatMessage{{Role: "user", Content: prompt}},
	}

	headers := map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": anthropicVersion,
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := a.post(ctx, "/v1/messages", payload, headers, &result); err != nil {
		return "", err
	}

	var text strings.Builder
	for _, c := range result.Content {
		if c.Type == "text" {
			text.WriteString(c.Text)
		}
	}
	return text.String(), nil
}
