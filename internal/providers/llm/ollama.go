package llm

type Ollama struct {
	*OpenAICompatible
}

// NewOllama talks to Ollama's OpenAI-compatible endpoint.
func NewOllama(p Params) *Ollama {
	return &Ollama{
		OpenAICompatible: NewOpenAICompatible(OpenAICompatibleConfig{
			Params:     p,
			DefaultURL: "http://localhost:11434",
			AuthHeader: "Authorization",
			AuthPrefix: "Bearer ",
		}),
	}
}
