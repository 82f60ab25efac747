package installer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type InputSpec struct {
	Title       string
	EnvKey      string
	Placeholder string
	Secret      bool
	// Optional accepts an empty value; the key is then left unset.
	Optional bool
	// Skip, when it returns true on entry, passes the step silently.
	Skip func(state *InstallState) bool
}

// InputStep collects one free-text value
type InputStep struct {
	spec  InputSpec
	input textinput.Model
}

func NewInputStep(spec InputSpec) Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = spec.Placeholder
	if spec.Secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return &InputStep{spec: spec, input: ti}
}

func (s *InputStep) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, nudge)
}

func (s *InputStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.spec.Skip != nil && s.spec.Skip(state) {
		return nil, nil
	}
	if _, ok := msg.(nextMsg); ok {
		return s, nil
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" && !s.spec.Optional {
			return s, cmd
		}
		if val != "" {
			state.EnvVars[s.spec.EnvKey] = val
		}
		return nil, nil
	}
	return s, cmd
}

func (s *InputStep) View(state *InstallState) string {
	hint := ""
	if s.spec.Optional {
		hint = " (optional - press Enter to skip)"
	}
	return fmt.Sprintf("%s%s:\n\n%s\n\n(press enter to confirm)\n", s.spec.Title, hint, s.input.View())
}
