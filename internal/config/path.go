// Package config loads component settings from viper and the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

// firstNonEmpty returns the viper value for key, or the named environment
// variable when the key is unset.
func firstNonEmpty(value, envVar string) string {
	if value != "" {
		return value
	}
	return os.Getenv(envVar)
}
