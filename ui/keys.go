package ui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/nostui/domain"
)

// bubbletea spellings that differ from the keymap's.
var keyAliases = map[string]string{
	"pgup":   "pageup",
	"pgdown": "pagedown",
	" ":      "space",
}

// KeyFromMsg converts a terminal key press into a domain.Key. Pastes and
// keys bubbletea could not name are reported as not ok.
func KeyFromMsg(msg tea.KeyMsg) (domain.Key, bool) {
	if msg.Paste {
		return domain.Key{}, false
	}
	k := domain.Key{Alt: msg.Alt}

	switch msg.Type {
	case tea.KeyRunes:
		if utf8.RuneCountInString(string(msg.Runes)) != 1 {
			return domain.Key{}, false
		}
		k.Name = string(msg.Runes)
		return k.Normalize(), true
	case tea.KeySpace:
		k.Name = "space"
		return k, true
	case tea.KeyShiftTab:
		k.Name = "backtab"
		return k, true
	}

	// Named keys; the Alt flag is already taken.
	name := tea.Key{Type: msg.Type}.String()
	if name == "" {
		return domain.Key{}, false
	}
	for {
		if rest, ok := strings.CutPrefix(name, "ctrl+"); ok && rest != "" {
			k.Ctrl = true
			name = rest
			continue
		}
		if rest, ok := strings.CutPrefix(name, "shift+"); ok && rest != "" {
			k.Shift = true
			name = rest
			continue
		}
		break
	}
	if alias, ok := keyAliases[name]; ok {
		name = alias
	}
	k.Name = name
	return k.Normalize(), true
}
