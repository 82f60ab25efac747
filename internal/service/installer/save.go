package installer

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/chatgate/internal/service/responder"
)

const defaultPersonaName = "Mizu"

// FinalizationStep computes derived values
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return nudge
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	Finalize(state)
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}

// Finalize fills values derived from the answers.
func Finalize(state *InstallState) {
	if state.EnvVars[envTGToken] != "" {
		state.EnvVars[envTelegram] = "true"
	} else {
		state.EnvVars[envTelegram] = "false"
	}
	if state.EnvVars[envPersonaName] == "" {
		state.EnvVars[envPersonaName] = defaultPersonaName
	}
}

// SaveEnvStep writes the collected configuration and the persona template
// into the runtime directory
type SaveEnvStep struct {
	runtimePath string
	err         error
	saved       bool
}

func NewSaveEnvStep(runtimePath string) Step {
	return &SaveEnvStep{runtimePath: runtimePath}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return nudge
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved {
		return nil, nil
	}
	if s.err != nil {
		return s, nil
	}

	if err := Save(s.runtimePath, state); err != nil {
		s.err = err
		return s, func() tea.Msg { return errMsg(err) }
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}

// Save writes .env and PERSONA.md under runtimePath. An existing .env is
// never overwritten.
func Save(runtimePath string, state *InstallState) error {
	if err := os.MkdirAll(runtimePath, 0o755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(runtimePath, ".env")
	if _, err := os.Stat(envPath); err == nil {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	if err := os.WriteFile(envPath, []byte(state.Render()), 0o600); err != nil {
		return fmt.Errorf("failed to write .env: %w", err)
	}

	persona := responder.NewPersona(filepath.Join(runtimePath, "PERSONA.md"), state.EnvVars[envPersonaName])
	if _, err := persona.WriteDefault(); err != nil {
		return err
	}
	return nil
}
