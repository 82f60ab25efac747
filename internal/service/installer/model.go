package installer

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// suggestedModels are offered per provider. Filtering lets the user type
// any other model ID.
var suggestedModels = map[string][]item{
	"gemini": {
		{id: "gemini-1.5-flash", title: "Gemini 1.5 Flash", desc: "fast, generous free tier"},
		{id: "gemini-2.0-flash", title: "Gemini 2.0 Flash", desc: "newer flash model"},
	},
	"openai": {
		{id: "gpt-4o-mini", title: "GPT-4o mini", desc: "cheap and quick"},
		{id: "gpt-4o", title: "GPT-4o", desc: "flagship"},
	},
	"anthropic": {
		{id: "claude-3-5-haiku-latest", title: "Claude 3.5 Haiku", desc: "fast"},
		{id: "claude-3-5-sonnet-latest", title: "Claude 3.5 Sonnet", desc: "balanced"},
	},
	"openrouter": {
		{id: "openai/gpt-4o-mini", title: "OpenAI GPT-4o mini", desc: "via OpenRouter"},
		{id: "meta-llama/llama-3.1-8b-instruct", title: "Llama 3.1 8B Instruct", desc: "via OpenRouter"},
	},
	"ollama": {
		{id: "llama3.1", title: "Llama 3.1", desc: "local"},
		{id: "qwen2.5", title: "Qwen 2.5", desc: "local"},
	},
}

type item struct {
	id    string
	title string
	desc  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.id }

// ModelStep picks a model from the provider's suggestions. Providers
// without suggestions get a free-text step instead.
type ModelStep struct {
	list   list.Model
	loaded bool
}

func NewModelStep() Step {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Select AI Model"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	return &ModelStep{list: l}
}

func (s *ModelStep) Init() tea.Cmd {
	return nudge
}

func (s *ModelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if !s.loaded {
		models, ok := suggestedModels[state.provider()]
		if !ok {
			next := NewInputStep(InputSpec{
				Title:       "Enter the model ID",
				EnvKey:      envModel,
				Placeholder: "my-model",
			})
			return next, next.Init()
		}
		items := make([]list.Item, len(models))
		for i, m := range models {
			items[i] = m
		}
		s.list.SetItems(items)
		s.loaded = true
	}

	s.list.SetSize(width, height-4)

	var cmd tea.Cmd
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		wasFiltering := s.list.FilterState() == list.Filtering
		s.list, cmd = s.list.Update(msg)

		if wasFiltering || s.list.FilterState() == list.Filtering {
			return s, cmd
		}

		if i, ok := s.list.SelectedItem().(item); ok {
			state.EnvVars[envModel] = i.id
			return nil, nil
		}
		return s, cmd
	}

	s.list, cmd = s.list.Update(msg)
	return s, cmd
}

func (s *ModelStep) View(state *InstallState) string {
	if !s.loaded {
		return "Loading models...\n"
	}
	return s.list.View()
}
