package util

import (
	_ "embed"
	"fmt"
	"strings"
	"unicode"
)

//go:embed version.txt
var embeddedVersion string

func GetVersion() string {
	return strings.TrimSpace(embeddedVersion)
}

func GetNameAndVersion() string {
	return fmt.Sprintf("%s / %s", Name, GetVersion())
}

// ShortID abbreviates a hex event id or public key for status lines.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ShortKey abbreviates a bech32 key like npub1... to its prefix and tail.
func ShortKey(key string) string {
	if len(key) <= 16 {
		return key
	}
	return key[:10] + "…" + key[len(key)-4:]
}

// NormalizeInput flattens post content to a single line and drops control
// characters, so it can be rendered in a fixed-height row.
func NormalizeInput(text string) string {
	normalized := strings.NewReplacer("\r\n", " ", "\n", " ", "\t", " ").Replace(text)
	normalized = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, normalized)
	return strings.Join(strings.Fields(normalized), " ")
}
