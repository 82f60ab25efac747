package installer

import (
	"fmt"
	"slices"
	"strings"
)

type InstallState struct {
	EnvVars map[string]string
}

func NewInstallState() *InstallState {
	return &InstallState{
		EnvVars: make(map[string]string),
	}
}

// Render returns the collected variables as .env lines sorted by key.
func (s *InstallState) Render() string {
	keys := make([]string, 0, len(s.EnvVars))
	for k := range s.EnvVars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("%s=%s\n", k, s.EnvVars[k]))
	}
	return b.String()
}

func (s *InstallState) provider() string {
	return s.EnvVars[envProvider]
}
