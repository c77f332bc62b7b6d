package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key is a single key press with its modifiers. Name is either one character
// (case-sensitive) or a lowercase named key such as "esc" or "pageup".
type Key struct {
	Ctrl  bool
	Alt   bool
	Shift bool
	Name  string
}

// Normalize folds the shift modifier into uppercase letters so that "<S-g>"
// and "<G>" compare equal.
func (k Key) Normalize() Key {
	if utf8.RuneCountInString(k.Name) == 1 {
		r, _ := utf8.DecodeRuneInString(k.Name)
		if k.Shift && unicode.IsLetter(r) {
			k.Name = string(unicode.ToUpper(r))
			k.Shift = false
		} else if unicode.IsUpper(r) {
			k.Shift = false
		}
		return k
	}
	k.Name = strings.ToLower(k.Name)
	return k
}

// IsRune reports whether the key carries a single printable character.
func (k Key) IsRune() bool {
	if utf8.RuneCountInString(k.Name) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(k.Name)
	return unicode.IsPrint(r)
}

// String renders the key in bracket notation, e.g. "<C-c>" or "<esc>".
func (k Key) String() string {
	var b strings.Builder
	b.WriteByte('<')
	if k.Ctrl {
		b.WriteString("C-")
	}
	if k.Alt {
		b.WriteString("M-")
	}
	if k.Shift {
		b.WriteString("S-")
	}
	b.WriteString(k.Name)
	b.WriteByte('>')
	return b.String()
}
