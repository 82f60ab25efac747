package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimeDir = ".chatgate"

func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("CHATGATE_RUNTIME_PATH"))
}

// resolveRuntimePath anchors relative paths at the user's home directory.
func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimeDir
	}

	if !filepath.IsAbs(path) {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path)
	}
	return path
}
