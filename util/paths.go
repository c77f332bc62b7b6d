package util

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	AppConfigDir = ".config/nostui"
	AppDataDir   = ".local/state/nostui"
)

// GetConfigDir returns the nostui config directory and creates it if it
// doesn't exist. $NOSTUI_CONFIG wins over $XDG_CONFIG_HOME/nostui, which
// wins over ~/.config/nostui.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("NOSTUI_CONFIG")
	if configDir == "" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, Name)
		}
	}
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, AppConfigDir)
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetDataDir returns the directory for the log file
// ($XDG_STATE_HOME/nostui or ~/.local/state/nostui) and creates it.
func GetDataDir() (string, error) {
	var dataDir string
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		dataDir = filepath.Join(xdg, Name)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, AppDataDir)
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// ResolveFilePath resolves a file path with the following priority:
// 1. Local working directory (e.g., ./nostui.log)
// 2. Data directory (e.g., ~/.local/state/nostui/nostui.log)
// 3. Returns the data directory path if neither exists (for creation)
func ResolveFilePath(filename string) string {
	if _, err := os.Stat(filename); err == nil {
		return filename
	}

	dataDir, err := GetDataDir()
	if err != nil {
		return filename
	}

	return filepath.Join(dataDir, filename)
}
