package llm

// OpenAI provider is implemented using OpenAICompatible.
type OpenAI struct {
	*OpenAICompatible
}

func NewOpenAI(p Params) *OpenAI {
	return &OpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Params:     p,
			DefaultURL: "https://api.openai.com",
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
