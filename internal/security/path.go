package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath normalizes a user-supplied path for the file tools:
// "~" and "~/..." expand to the current user's home directory, relative
// paths resolve against the working directory, and the result is cleaned.
//
// Expansion never touches the filesystem; existence checks belong to the
// caller.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		if path == "~" {
			path = home
		} else {
			path = filepath.Join(home, path[2:])
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("invalid path: %w", err)
	}
	return abs, nil
}
