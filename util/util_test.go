package util

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	version := GetVersion()
	if version == "" {
		t.Error("Expected a version, got empty string")
	}
	if strings.ContainsAny(version, " \n") {
		t.Errorf("Expected trimmed version, got '%s'", version)
	}
}

func TestGetNameAndVersion(t *testing.T) {
	result := GetNameAndVersion()
	expected := "nostui / " + GetVersion()

	if result != expected {
		t.Errorf("Expected '%s', got '%s'", expected, result)
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"abc", "abc"},
		{"0123456789abcdef", "01234567"},
	}

	for _, tt := range tests {
		if got := ShortID(tt.input); got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, got)
		}
	}
}

func TestShortKey(t *testing.T) {
	key := "npub180cvv07tjdrrgpa0j7j7tmnyl2yr6yr7l8j4s3evf6u64th6gkwsyjh6w6"
	got := ShortKey(key)
	if got != "npub180cvv…h6w6" {
		t.Errorf("Expected 'npub180cvv…h6w6', got '%s'", got)
	}
	if ShortKey("npub1short") != "npub1short" {
		t.Errorf("Expected short keys unchanged, got '%s'", ShortKey("npub1short"))
	}
}

func TestNormalizeInput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "newlines replaced",
			input:    "line1\nline2\r\nline3",
			expected: "line1 line2 line3",
		},
		{
			name:     "control characters dropped",
			input:    "bell\a and \x1b[31mescape",
			expected: "bell and [31mescape",
		},
		{
			name:     "runs of spaces collapsed",
			input:    "  a\t\tb   c  ",
			expected: "a b c",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "unicode kept",
			input:    "gm 🌅 ☕",
			expected: "gm 🌅 ☕",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeInput(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestGetConfigDirHonorsEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "conf")
	t.Setenv("NOSTUI_CONFIG", dir)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}
	if got != dir {
		t.Errorf("Expected %s, got %s", dir, got)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Expected directory to be created: %v", err)
	}
}

func TestGetConfigDirXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("NOSTUI_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir failed: %v", err)
	}
	if got != filepath.Join(xdg, "nostui") {
		t.Errorf("Expected %s, got %s", filepath.Join(xdg, "nostui"), got)
	}
}

func TestResolveFilePath(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	got := ResolveFilePath("does-not-exist.log")
	expected := filepath.Join(state, "nostui", "does-not-exist.log")
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.input)
		if err != nil {
			t.Fatalf("ParseLevel(%s) failed: %v", tt.input, err)
		}
		if got != tt.expected {
			t.Errorf("Expected %v, got %v", tt.expected, got)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestSetupLogging(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "test.log")
	logger, closeLog, err := SetupLogging(path, slog.LevelInfo)
	if err != nil {
		t.Fatalf("SetupLogging failed: %v", err)
	}

	logger.Debug("hidden")
	slog.Info("relay connected", "relay", "wss://relay.one")
	if err := closeLog(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "relay connected") || !strings.Contains(out, "relay=wss://relay.one") {
		t.Errorf("Expected log line with attributes, got '%s'", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected debug line to be filtered, got '%s'", out)
	}
}
