package installer

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	envProvider     = "LLM_PROVIDER"
	envModel        = "LLM_MODEL"
	envAPIKey       = "LLM_API_KEY"
	envBaseURL      = "LLM_BASE_URL"
	envStore        = "CHATGATE_STORE"
	envPersonaName  = "BOT_PERSONA_NAME"
	envTelegram     = "ENABLE_TELEGRAM"
	envTGToken      = "TELEGRAM_TOKEN"
	envAllowedChats = "TELEGRAM_ALLOWED_CHATS"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	itemStyle  = lipgloss.NewStyle().PaddingLeft(2)
	selStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("5"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)

// Step represents a single step in the installation wizard
type Step interface {
	Init() tea.Cmd
	Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd)
	View(state *InstallState) string
}

func getSteps(runtimePath string) []Step {
	return []Step{
		NewChoiceStep("Select your AI Provider:", envProvider, providerChoices),
		NewInputStep(InputSpec{
			Title:       "Enter the OpenAI-compatible base URL",
			EnvKey:      envBaseURL,
			Placeholder: "https://api.example.com",
			Skip:        func(s *InstallState) bool { return s.provider() != "custom" },
		}),
		NewInputStep(InputSpec{
			Title:       "Enter your API Key",
			EnvKey:      envAPIKey,
			Placeholder: "sk-...",
			Secret:      true,
			Optional:    true,
			Skip:        func(s *InstallState) bool { return s.provider() == "ollama" },
		}),
		NewModelStep(),
		NewInputStep(InputSpec{
			Title:       "Name your bot's persona",
			EnvKey:      envPersonaName,
			Placeholder: "Mizu",
			Optional:    true,
		}),
		NewChoiceStep("Where should memories be stored?", envStore, storeChoices),
		NewInputStep(InputSpec{
			Title:       "Enter your Telegram Bot Token",
			EnvKey:      envTGToken,
			Placeholder: "123456789:ABCDEF...",
			Secret:      true,
			Optional:    true,
		}),
		NewInputStep(InputSpec{
			Title:       "Group chat IDs to serve without a mention, comma separated",
			EnvKey:      envAllowedChats,
			Placeholder: "-1001234567890",
			Optional:    true,
			Skip:        func(s *InstallState) bool { return s.EnvVars[envTGToken] == "" },
		}),
		NewFinalizationStep(),
		NewSaveEnvStep(runtimePath),
	}
}

type errMsg error
type nextMsg struct{}

// nudge triggers Update on steps that act without user input.
func nudge() tea.Msg { return nextMsg{} }

// model is the main Bubble Tea model that orchestrates the steps
type model struct {
	steps       []Step
	currentStep int
	state       *InstallState
	quitting    bool
	err         error
	width       int
	height      int
}

func initialModel(runtimePath string) model {
	return model{
		steps:       getSteps(runtimePath),
		currentStep: 0,
		state:       NewInstallState(),
	}
}

func (m model) Init() tea.Cmd {
	if len(m.steps) > 0 && m.steps[0] != nil {
		return m.steps[0].Init()
	}
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.quitting {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case errMsg:
		m.err = msg
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
	}

	if m.currentStep >= len(m.steps) {
		return m, tea.Quit
	}

	nextStep, cmd := m.steps[m.currentStep].Update(msg, m.state, m.width, m.height)

	if nextStep == nil {
		// Step indicated completion, move to next
		m.currentStep++
		if m.currentStep >= len(m.steps) {
			return m, tea.Quit
		}
		return m, m.steps[m.currentStep].Init()
	}

	// A step may replace itself, e.g. for branching
	if nextStep != m.steps[m.currentStep] {
		m.steps[m.currentStep] = nextStep
	}

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return "Installation cancelled.\n"
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(press ctrl+c to quit)\n"
	}

	if m.currentStep >= len(m.steps) {
		return "Configuration complete!\n"
	}

	return titleStyle.Render("Setting up ChatGate 💬") + "\n\n" + m.steps[m.currentStep].View(m.state)
}

// RunWizard starts the TUI and writes the result into runtimePath.
func RunWizard(runtimePath string) (*InstallState, error) {
	p := tea.NewProgram(initialModel(runtimePath), tea.WithAltScreen())
	m, err := p.Run()
	if err != nil {
		return nil, err
	}

	finalModel := m.(model)
	if finalModel.quitting {
		return nil, fmt.Errorf("chatgate installation interrupted")
	}
	if finalModel.err != nil {
		return nil, finalModel.err
	}

	return finalModel.state, nil
}
