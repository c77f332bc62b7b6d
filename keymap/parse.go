package keymap

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deemkeen/nostui/domain"
)

var (
	ErrMalformedKey  = errors.New("malformed key sequence")
	ErrChord         = errors.New("multi-key sequences are not supported")
	ErrUnknownAction = errors.New("unknown action")
)

var namedKeys = map[string]string{
	"esc":       "esc",
	"escape":    "esc",
	"enter":     "enter",
	"return":    "enter",
	"cr":        "enter",
	"tab":       "tab",
	"backtab":   "backtab",
	"backspace": "backspace",
	"bs":        "backspace",
	"delete":    "delete",
	"del":       "delete",
	"insert":    "insert",
	"space":     "space",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pagedown":  "pagedown",
	"minus":     "-",
	"hyphen":    "-",
	"lt":        "<",
	"gt":        ">",
}

func init() {
	for i := 1; i <= 12; i++ {
		name := fmt.Sprintf("f%d", i)
		namedKeys[name] = name
	}
}

// ParseKey parses one bracketed key such as "<j>", "<C-c>" or "<esc>".
// Sequences of more than one key fail with ErrChord.
func ParseKey(seq string) (domain.Key, error) {
	tokens, err := splitTokens(seq)
	if err != nil {
		return domain.Key{}, err
	}
	if len(tokens) != 1 {
		return domain.Key{}, fmt.Errorf("%w: %q has %d keys", ErrChord, seq, len(tokens))
	}
	return parseToken(tokens[0])
}

func splitTokens(seq string) ([]string, error) {
	s := strings.TrimSpace(seq)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrMalformedKey)
	}
	var tokens []string
	for s != "" {
		if s[0] != '<' {
			return nil, fmt.Errorf("%w: %q must be written as <key>", ErrMalformedKey, seq)
		}
		if len(s) < 3 {
			return nil, fmt.Errorf("%w: %q is missing a closing '>'", ErrMalformedKey, seq)
		}
		// "<>>" and "<<>" name the bracket keys themselves
		end := strings.IndexByte(s[2:], '>')
		if end < 0 {
			return nil, fmt.Errorf("%w: %q is missing a closing '>'", ErrMalformedKey, seq)
		}
		end += 2
		tokens = append(tokens, s[1:end])
		s = s[end+1:]
	}
	return tokens, nil
}

func parseToken(tok string) (domain.Key, error) {
	var k domain.Key
	rest := tok
	for {
		i := strings.IndexByte(rest, '-')
		if i <= 0 || i == len(rest)-1 {
			break
		}
		switch strings.ToLower(rest[:i]) {
		case "c", "ctrl", "control":
			k.Ctrl = true
		case "m", "a", "alt", "meta":
			k.Alt = true
		case "s", "shift":
			k.Shift = true
		default:
			return domain.Key{}, fmt.Errorf("%w: unknown modifier %q in <%s>", ErrMalformedKey, rest[:i], tok)
		}
		rest = rest[i+1:]
	}

	if utf8.RuneCountInString(rest) == 1 {
		k.Name = rest
		return k.Normalize(), nil
	}
	name, ok := namedKeys[strings.ToLower(rest)]
	if !ok {
		return domain.Key{}, fmt.Errorf("%w: unknown key %q in <%s>", ErrMalformedKey, rest, tok)
	}
	k.Name = name
	return k.Normalize(), nil
}
