package responder

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const defaultPersona = `You are {{name}}, a warm and playful chat companion.

IMPORTANT RULES:
- Only respond once
- Answer in the language the user writes in
- Do not respond in two languages at the same time
- Keep replies short unless the user asks for detail`

// Persona is the system prompt. The file, when present, is re-read on
// every call so edits apply without a restart.
type Persona struct {
	path string
	name string
}

func NewPersona(path, name string) *Persona {
	return &Persona{path: path, name: name}
}

func (p *Persona) Name() string {
	return p.name
}

func (p *Persona) Text() string {
	text := defaultPersona
	if p.path != "" {
		if content, err := os.ReadFile(p.path); err == nil && strings.TrimSpace(string(content)) != "" {
			text = string(content)
		}
	}
	return strings.TrimSpace(strings.ReplaceAll(text, "{{name}}", p.name))
}

// WriteDefault writes the built-in template to the persona path unless a
// file already exists there. It reports whether a file was written.
func (p *Persona) WriteDefault() (bool, error) {
	if p.path == "" {
		return false, nil
	}
	if _, err := os.Stat(p.path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return false, fmt.Errorf("create persona dir: %w", err)
	}
	if err := os.WriteFile(p.path, []byte(defaultPersona+"\n"), 0o644); err != nil {
		return false, fmt.Errorf("write persona: %w", err)
	}
	return true, nil
}
