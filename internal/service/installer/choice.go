package installer

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type choice struct {
	label string
	value string
}

var providerChoices = []choice{
	{label: "Gemini", value: "gemini"},
	{label: "OpenAI", value: "openai"},
	{label: "Anthropic", value: "anthropic"},
	{label: "OpenRouter", value: "openrouter"},
	{label: "Ollama", value: "ollama"},
	{label: "Custom (OpenAI-compatible)", value: "custom"},
}

var storeChoices = []choice{
	{label: "SQLite database", value: "sqlite"},
	{label: "JSON file (bot_memory.json)", value: "file"},
	{label: "Nowhere, forget on restart", value: "memory"},
}

// ChoiceStep picks one of a fixed set of values
type ChoiceStep struct {
	title   string
	envKey  string
	choices []choice
	cursor  int
}

func NewChoiceStep(title, envKey string, choices []choice) Step {
	return &ChoiceStep{
		title:   title,
		envKey:  envKey,
		choices: choices,
	}
}

func (s *ChoiceStep) Init() tea.Cmd {
	return nil
}

func (s *ChoiceStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
		case "enter":
			state.EnvVars[s.envKey] = s.choices[s.cursor].value
			return nil, nil
		}
	}
	return s, nil
}

func (s *ChoiceStep) View(state *InstallState) string {
	var b strings.Builder
	b.WriteString(s.title + "\n\n")
	for i, c := range s.choices {
		if s.cursor == i {
			b.WriteString(selStyle.Render(fmt.Sprintf("❯ %s", c.label)) + "\n")
		} else {
			b.WriteString(itemStyle.Render(fmt.Sprintf("  %s", c.label)) + "\n")
		}
	}
	b.WriteString("\n(press ctrl+c to quit)\n")
	return b.String()
}
