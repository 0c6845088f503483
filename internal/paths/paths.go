package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultStateDir returns the directory holding history and logs.
func DefaultStateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".local", "state", "typerace"), nil
}

// DefaultConfigPath returns the global config file location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	return filepath.Join(home, ".config", "typerace", "config.toml"), nil
}

// DefaultHistoryPath returns the default race history database file.
func DefaultHistoryPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.duckdb"), nil
}

// DefaultLogPath returns the default log file.
func DefaultLogPath() (string, error) {
	dir, err := DefaultStateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "typerace.log"), nil
}
