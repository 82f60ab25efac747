package llm

import "github.com/sandevgo/chatgate/internal/core"

type OpenRouter struct {
	*OpenAICompatible
}

func NewOpenRouter(p Params) *OpenRouter {
	return &OpenRouter{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Params:     p,
			DefaultURL: "https://openrouter.ai/api",
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
			ExtraHeaders: map[string]string{
				"HTTP-Referer": core.RepositoryURL,
				"X-Title":      core.AppName,
			},
		}),
	}
}
