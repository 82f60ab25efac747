package llm

type CustomOpenAI struct {
	*OpenAICompatible
}

// NewCustomOpenAI targets any OpenAI-compatible server; BaseURL is required.
func NewCustomOpenAI(p Params) *CustomOpenAI {
	return &CustomOpenAI{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Params:     p,
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
