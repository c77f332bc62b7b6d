package common

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	COLOR_GREY      = "241"
	COLOR_MAGENTA   = "170"
	COLOR_LIGHTBLUE = "69"
	COLOR_PURPLE    = "#7D56F4"
)

var (
	ErrUnknownStyle = errors.New("unknown style name")
	ErrBadStyle     = errors.New("bad style descriptor")
)

// StyleError names the style entry that could not be parsed.
type StyleError struct {
	Name       string
	Descriptor string
	Err        error
}

func (e *StyleError) Error() string {
	return fmt.Sprintf("style %s %q: %v", e.Name, e.Descriptor, e.Err)
}

func (e *StyleError) Unwrap() error {
	return e.Err
}

// Styles holds every style the views draw with.
type Styles struct {
	Header         lipgloss.Style
	Status         lipgloss.Style
	Author         lipgloss.Style
	Time           lipgloss.Style
	Content        lipgloss.Style
	Selected       lipgloss.Style
	Reply          lipgloss.Style
	Engagement     lipgloss.Style
	RelayConnected lipgloss.Style
	RelayFailed    lipgloss.Style
	Compose        lipgloss.Style
	Help           lipgloss.Style
}

// DefaultStyleDescriptors are used for every name the config leaves out.
var DefaultStyleDescriptors = map[string]string{
	"header":          "bold 255 on " + COLOR_PURPLE,
	"status":          COLOR_MAGENTA,
	"author":          "bold " + COLOR_LIGHTBLUE,
	"time":            COLOR_GREY,
	"content":         "",
	"selected":        "reverse",
	"reply":           COLOR_MAGENTA,
	"engagement":      COLOR_GREY,
	"relay_connected": "green",
	"relay_failed":    "red",
	"compose":         COLOR_LIGHTBLUE,
	"help":            COLOR_GREY,
}

var colorNames = map[string]int{
	"black":   0,
	"red":     1,
	"green":   2,
	"yellow":  3,
	"blue":    4,
	"magenta": 5,
	"cyan":    6,
	"white":   7,
	"gray":    8,
	"grey":    8,
}

// StyleNames lists the configurable style names, sorted.
func StyleNames() []string {
	names := make([]string, 0, len(DefaultStyleDescriptors))
	for n := range DefaultStyleDescriptors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// DefaultStyles builds the built-in styles on r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	s, err := ParseStyles(r, nil)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseStyles lays the user descriptors over the defaults and builds them
// on r. Unknown names and tokens are errors.
func ParseStyles(r *lipgloss.Renderer, user map[string]string) (Styles, error) {
	descs := make(map[string]string, len(DefaultStyleDescriptors))
	for k, v := range DefaultStyleDescriptors {
		descs[k] = v
	}
	for k, v := range user {
		if _, ok := DefaultStyleDescriptors[k]; !ok {
			return Styles{}, &StyleError{Name: k, Descriptor: v, Err: ErrUnknownStyle}
		}
		descs[k] = v
	}

	built := make(map[string]lipgloss.Style, len(descs))
	for _, name := range StyleNames() {
		st, err := ParseStyle(r, descs[name])
		if err != nil {
			return Styles{}, &StyleError{Name: name, Descriptor: descs[name], Err: err}
		}
		built[name] = st
	}

	return Styles{
		Header:         built["header"],
		Status:         built["status"],
		Author:         built["author"],
		Time:           built["time"],
		Content:        built["content"],
		Selected:       built["selected"],
		Reply:          built["reply"],
		Engagement:     built["engagement"],
		RelayConnected: built["relay_connected"],
		RelayFailed:    built["relay_failed"],
		Compose:        built["compose"],
		Help:           built["help"],
	}, nil
}

// ParseStyle builds one style from a descriptor such as
// "bold underline #ff8800 on blue".
func ParseStyle(r *lipgloss.Renderer, desc string) (lipgloss.Style, error) {
	st := r.NewStyle()
	tokens := strings.Fields(strings.ToLower(desc))
	fg := false
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		switch tok {
		case "bold":
			st = st.Bold(true)
		case "italic":
			st = st.Italic(true)
		case "underline":
			st = st.Underline(true)
		case "faint":
			st = st.Faint(true)
		case "reverse":
			st = st.Reverse(true)
		case "blink":
			st = st.Blink(true)
		case "strikethrough":
			st = st.Strikethrough(true)
		case "on":
			if i+1 >= len(tokens) {
				return st, fmt.Errorf("%w: \"on\" needs a color", ErrBadStyle)
			}
			i++
			c, err := ParseColor(tokens[i])
			if err != nil {
				return st, err
			}
			st = st.Background(c)
		default:
			if fg {
				return st, fmt.Errorf("%w: second foreground color %q", ErrBadStyle, tok)
			}
			c, err := ParseColor(tok)
			if err != nil {
				return st, err
			}
			st = st.Foreground(c)
			fg = true
		}
	}
	return st, nil
}

// ParseColor accepts an ANSI index 0-255, #rrggbb or a color name,
// optionally prefixed with "bright-".
func ParseColor(tok string) (lipgloss.Color, error) {
	if strings.HasPrefix(tok, "#") {
		hex := tok[1:]
		if len(hex) != 6 {
			return "", fmt.Errorf("%w: color %q is not #rrggbb", ErrBadStyle, tok)
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", fmt.Errorf("%w: color %q is not #rrggbb", ErrBadStyle, tok)
		}
		return lipgloss.Color(tok), nil
	}
	if n, err := strconv.Atoi(tok); err == nil {
		if n < 0 || n > 255 {
			return "", fmt.Errorf("%w: color index %d out of range", ErrBadStyle, n)
		}
		return lipgloss.Color(tok), nil
	}
	name, bright := strings.CutPrefix(tok, "bright-")
	n, ok := colorNames[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown token %q", ErrBadStyle, tok)
	}
	if bright && n < 8 {
		n += 8
	}
	return lipgloss.Color(strconv.Itoa(n)), nil
}
